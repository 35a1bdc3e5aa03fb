// Package main serves the registry edit tools over MCP on stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cancer-registry-edits/internal/api"
	"github.com/cancer-registry-edits/internal/config"
	"github.com/cancer-registry-edits/internal/mcp/tools"
	"github.com/cancer-registry-edits/internal/progress"
	"github.com/cancer-registry-edits/internal/service"
	"github.com/cancer-registry-edits/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "registry-edits mcp server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configManager, err := config.NewManager()
	if err != nil {
		return err
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg := configManager.GetConfig()

	// stdout carries the protocol
	logCfg := cfg.Logging
	if logCfg.Output == "" || logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	logger, err := config.NewLogger(logCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, api.Version, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.WithError(err).Warn("Failed to flush spans at shutdown")
		}
	}()

	registry, err := service.LoadRegistry(ctx, cfg.Codes, logger)
	if err != nil {
		return err
	}

	pipeline, err := service.NewPipeline(registry, service.PipelineOptions{
		Workers:  cfg.Pipeline.Workers,
		MemoSize: cfg.Correction.MemoSize,
		Notifier: progress.NewLogNotifier(logger),
	}, logger)
	if err != nil {
		return err
	}

	server := tools.NewServer(tools.NewToolset(pipeline, registry, cfg.Correction.Threshold, logger), api.Version)

	logger.Info("Starting registry edits MCP server on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	logger.Info("MCP server stopped")
	return nil
}
