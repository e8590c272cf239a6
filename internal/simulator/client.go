package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrUnexpectedStatus wraps responses whose status differs from the expected one.
var ErrUnexpectedStatus = errors.New("unexpected status")

// CreateOrderRequest is the body sent to POST /orders.
type CreateOrderRequest struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is the subset of the order payload the simulator reads back.
type Order struct {
	ID       int64  `json:"id"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

// Client is the HTTP surface of the API the simulator drives.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error)
	ListOrders(ctx context.Context) (int, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	DeleteOrder(ctx context.Context, id int64) error
	Health(ctx context.Context) error
	SimulateError(ctx context.Context, errorType string) (int, error)
}

// FiberClient implements Client with fiber's fasthttp based Agent. The Agent
// takes no context: ctx is checked before each request is sent, but a request
// already in flight runs until its timeout.
type FiberClient struct {
	baseURL      string
	timeout      time.Duration
	errorTimeout time.Duration
}

// NewFiberClient targets baseURL. Ordinary calls time out after timeout; the
// error simulation call gets errorTimeout so a simulated stall can finish.
func NewFiberClient(baseURL string, timeout, errorTimeout time.Duration) *FiberClient {
	return &FiberClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		timeout:      timeout,
		errorTimeout: errorTimeout,
	}
}

func (c *FiberClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	var order Order
	_, err := c.do(ctx, fiber.Post(c.baseURL+"/orders").JSON(req), c.timeout, fiber.StatusCreated, &order)
	return order, err
}

func (c *FiberClient) ListOrders(ctx context.Context) (int, error) {
	var payload struct {
		Total int `json:"total"`
	}
	_, err := c.do(ctx, fiber.Get(c.baseURL+"/orders"), c.timeout, fiber.StatusOK, &payload)
	return payload.Total, err
}

func (c *FiberClient) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	body := map[string]string{"status": status}
	_, err := c.do(ctx, fiber.Put(c.orderURL(id)).JSON(body), c.timeout, fiber.StatusOK, nil)
	return err
}

func (c *FiberClient) DeleteOrder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, fiber.Delete(c.orderURL(id)), c.timeout, fiber.StatusOK, nil)
	return err
}

func (c *FiberClient) Health(ctx context.Context) error {
	_, err := c.do(ctx, fiber.Get(c.baseURL+"/health"), c.timeout, fiber.StatusOK, nil)
	return err
}

// SimulateError calls /simulate-error. An empty errorType lets the server pick.
// Any HTTP answer counts as success; the status is returned for logging.
func (c *FiberClient) SimulateError(ctx context.Context, errorType string) (int, error) {
	target := c.baseURL + "/simulate-error"
	if errorType != "" {
		target += "?error_type=" + url.QueryEscape(errorType)
	}
	return c.do(ctx, fiber.Get(target), c.errorTimeout, 0, nil)
}

func (c *FiberClient) orderURL(id int64) string {
	return c.baseURL + "/orders/" + strconv.FormatInt(id, 10)
}

// do sends the request. expect 0 accepts any status. Cancelling ctx does not
// abort a request that has already been sent.
func (c *FiberClient) do(ctx context.Context, agent *fiber.Agent, timeout time.Duration, expect int, out any) (int, error) {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, err
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, err
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return code, errors.Join(errs...)
	}
	if expect != 0 && code != expect {
		return code, fmt.Errorf("%w: got %d, want %d", ErrUnexpectedStatus, code, expect)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return code, fmt.Errorf("decode response: %w", err)
		}
	}
	return code, nil
}
