package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/techstore/internal/observability"
	"github.com/spec-kit/techstore/internal/simulator"
)

func main() {
	var (
		baseURL  = flag.String("url", "", "base URL of the API (default "+simulator.DefaultURL+")")
		mode     = flag.String("mode", string(simulator.ModeMixed), "traffic pattern: "+modeList())
		cfgPath  = flag.String("config", "", "optional YAML file overriding pattern durations and rates")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	runMode, err := simulator.ParseMode(*mode)
	if err != nil {
		log.Fatalf("%v (want one of: %s)", err, modeList())
	}

	logger, err := observability.NewConsoleLogger(*logLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := simulator.LoadConfig(*cfgPath)
	if err != nil {
		logger.Fatal("failed to load simulator config", zap.Error(err))
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := simulator.NewFiberClient(cfg.BaseURL, cfg.Timeout, cfg.ErrorTimeout)
	sim := simulator.New(client, cfg, logger)

	logger.Info("starting traffic simulator", zap.String("target", cfg.BaseURL), zap.String("mode", string(runMode)))
	if err := sim.CheckHealth(ctx); err != nil {
		logger.Error("cannot reach API, is it running?", zap.String("target", cfg.BaseURL), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("API is reachable")

	if err := sim.Run(ctx, runMode); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		stop()
		os.Exit(1)
	}

	stats := sim.Stats()
	fmt.Printf("\nsimulation complete: %d requests sent, %d failed\n", stats.Requests, stats.Failures)
	fmt.Printf("metrics: %s/metrics\n", strings.TrimRight(cfg.BaseURL, "/"))
}

func modeList() string {
	names := make([]string, 0, len(simulator.Modes))
	for _, m := range simulator.Modes {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}
