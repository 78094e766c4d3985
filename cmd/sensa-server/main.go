// sensa-server serves exit scanning and voice commands over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-sensesafe/internal/app"
	"github.com/teslashibe/go-sensesafe/internal/config"
	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/internal/log"
)

func main() {
	envFile := flag.String("env-file", "", "Path to .env file (default .env)")
	addr := flag.String("addr", "", "Listen address (overrides HTTP_ADDR)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load(config.Overrides{EnvFile: *envFile, HTTPAddr: *addr, LogLevel: *logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, httpc.New(0), logger)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	if err := a.Server().Start(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
