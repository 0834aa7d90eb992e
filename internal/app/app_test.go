package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditflow-backend/internal/config"
	"creditflow-backend/internal/infrastructure/blob"
	"creditflow-backend/internal/infrastructure/cache"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/infrastructure/notify"
	"creditflow-backend/internal/infrastructure/render"
	"creditflow-backend/internal/testutil/dbtest"
)

func TestNewStore(t *testing.T) {
	cfg := &config.Config{StorageDriver: "local", LocalStorageDir: t.TempDir(), LocalPublicBaseURL: "http://files.test"}
	s, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &blob.LocalStore{}, s)

	cfg.StorageDriver = "ftp"
	_, err = NewStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestNewNotifier(t *testing.T) {
	log := logger.NewTest(t)
	n, err := NewNotifier(context.Background(), &config.Config{NotifyDriver: "log"}, log)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, n)

	_, err = NewNotifier(context.Background(), &config.Config{NotifyDriver: "pigeon"}, log)
	assert.ErrorContains(t, err, "unknown notify driver")
}

func TestWire_AssemblesRunnableUseCases(t *testing.T) {
	rdb, err := cache.OpenRedis(miniredis.RunT(t).Addr(), 0)
	require.NoError(t, err)
	log := logger.NewTest(t)
	cfg := &config.Config{
		UploadMaxAttempts: 2, UploadBackoffBaseMS: 1,
		SweepBatchSize: 10, SweepWorkers: 1, SweepClaimTTLSecs: 60, NotifyTimeoutSeconds: 1,
	}
	a := &App{Cfg: cfg, Log: log, DB: dbtest.Open(t), Redis: rdb}
	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	a.notifier = notify.NewAsync(notify.NewLogNotifier(log), log, time.Second)
	a.wire(blob.NewLocalStore(t.TempDir(), "http://files.test"), a.notifier, renderer)
	defer a.Close()

	require.NotNil(t, a.Loans)
	require.NotNil(t, a.Transitions)
	require.NotNil(t, a.Disbursement)
	require.NotNil(t, a.Uploads)
	require.NotNil(t, a.Orchestrator)

	report, err := a.Orchestrator.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
}
