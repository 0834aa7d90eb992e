// Package app wires configuration into the concrete stores, repositories and
// use cases shared by the api server and the sweep command.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"creditflow-backend/internal/adapter/repository/mysql"
	"creditflow-backend/internal/config"
	"creditflow-backend/internal/infrastructure/blob"
	"creditflow-backend/internal/infrastructure/cache"
	"creditflow-backend/internal/infrastructure/db"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/infrastructure/notify"
	"creditflow-backend/internal/infrastructure/render"
	"creditflow-backend/internal/usecase/disbursement"
	"creditflow-backend/internal/usecase/document"
	"creditflow-backend/internal/usecase/loan"
	"creditflow-backend/internal/usecase/transition"
	"creditflow-backend/internal/usecase/upload"
)

type App struct {
	Cfg   *config.Config
	Log   logger.Logger
	DB    *gorm.DB
	Redis *redis.Client

	Loans        *loan.Usecase
	Transitions  *transition.Usecase
	Disbursement *disbursement.Usecase
	Uploads      *upload.Usecase
	Orchestrator *document.Orchestrator

	notifier *notify.Async
}

// NewStore picks the blob backend named by STORAGE_DRIVER.
func NewStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.StorageDriver {
	case "minio":
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		})
	case "local":
		return blob.NewLocalStore(cfg.LocalStorageDir, cfg.LocalPublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewNotifier picks the notification sink named by NOTIFY_DRIVER.
func NewNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (notify.Notifier, error) {
	switch cfg.NotifyDriver {
	case "sns":
		return notify.NewSNSNotifierFromRegion(ctx, cfg.AWSRegion, cfg.SNSTopicARN)
	case "log", "":
		return notify.NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.NotifyDriver)
	}
}

// Build opens every backing service and assembles the use cases. The caller
// owns Close.
func Build(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*App, error) {
	log := logger.FromZap(zl)

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), zl)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	a := &App{Cfg: cfg, Log: log, DB: gdb, Redis: rdb}

	store, err := NewStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	notifier, err := NewNotifier(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.notifier = notify.NewAsync(notifier, log, cfg.NotifyTimeout())
	a.wire(store, a.notifier, renderer)
	return a, nil
}

func (a *App) wire(store blob.Store, notifier notify.Notifier, renderer render.Renderer) {
	cfg, log := a.Cfg, a.Log
	loans := mysql.NewLoanRepository(a.DB)
	users := mysql.NewUserRepository(a.DB)
	tx := mysql.NewGormUoW(a.DB)
	uploader := blob.NewUploader(store, blob.RetryConfig{
		MaxAttempts: cfg.UploadMaxAttempts,
		BaseDelay:   cfg.UploadBackoffBase(),
	}, log.With(map[string]any{"component": "uploader"}))

	a.Loans = loan.NewUsecase(loans, users, log)
	a.Transitions = transition.NewUsecase(tx, notifier, log, transition.Config{NotifyTimeout: cfg.NotifyTimeout()})
	a.Disbursement = disbursement.NewUsecase(tx, notifier, log, disbursement.Config{NotifyTimeout: cfg.NotifyTimeout()})
	a.Uploads = upload.NewUsecase(loans, tx, uploader, log)
	a.Orchestrator = document.NewOrchestrator(document.Deps{
		Loans:     loans,
		Users:     users,
		Documents: mysql.NewDocumentRepository(a.DB),
		UoW:       tx,
		Renderer:  renderer,
		Uploader:  uploader,
		Claimer:   cache.NewLoanClaimer(a.Redis, cfg.SweepClaimTTL()),
		Log:       log.With(map[string]any{"component": "docgen"}),
	}, document.Config{BatchSize: cfg.SweepBatchSize, Workers: cfg.SweepWorkers})
}

// Close waits for in-flight notifications, then releases the connections.
func (a *App) Close() {
	if a.notifier != nil {
		a.notifier.Wait()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("redis close", map[string]any{"error": err})
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// ShutdownTimeout bounds graceful shutdown of the http server.
const ShutdownTimeout = 15 * time.Second
