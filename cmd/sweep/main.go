// Command sweep runs one document generation pass over every eligible loan
// and prints the batch report as JSON.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"creditflow-backend/internal/app"
	"creditflow-backend/internal/config"
	"creditflow-backend/internal/infrastructure/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Printf("config: %v", err)
		return 2
	}
	zl, err := logger.NewZap(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Printf("logger: %v", err)
		return 2
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Error("bootstrap", zap.Error(err))
		return 1
	}
	defer a.Close()

	report, err := a.Orchestrator.RunSweep(ctx)
	if err != nil {
		zl.Error("sweep", zap.Error(err))
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		zl.Error("encode report", zap.Error(err))
		return 1
	}
	if report.Failed > 0 {
		return 3
	}
	return 0
}
