package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "creditflow-backend/internal/adapter/http"
	"creditflow-backend/internal/adapter/middleware"
	"creditflow-backend/internal/app"
	"creditflow-backend/internal/config"
	"creditflow-backend/internal/infrastructure/logger"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.NewZap(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("bootstrap", zap.Error(err))
	}
	defer a.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	httpadp.Register(e, httpadp.Handlers{
		Health:    httpadp.NewHandler(),
		Loans:     httpadp.NewLoanHandler(a.Loans, a.Transitions, a.Disbursement, a.Log),
		Uploads:   httpadp.NewUploadHandler(a.Uploads, a.Log),
		Documents: httpadp.NewDocumentHandler(a.Orchestrator, a.Log),
	}, middleware.IdempotencyMiddleware(a.Redis, cfg.IdempotencyTTL(), a.Log))

	if every := cfg.SweepInterval(); every > 0 {
		go a.Orchestrator.RunPeriodic(ctx, every)
		zl.Info("periodic document sweep enabled", zap.Duration("interval", every))
	}

	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
