package blob

import (
	"context"
	"time"

	"creditflow-backend/internal/domain/apperror"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/infrastructure/metrics"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Uploader puts objects through a Store, retrying failed attempts with
// exponential backoff: base, 2*base, 4*base, ...
type Uploader struct {
	store Store
	cfg   RetryConfig
	log   logger.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Uploader)

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(u *Uploader) { u.sleep = fn }
}

func NewUploader(store Store, cfg RetryConfig, log logger.Logger, opts ...Option) *Uploader {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay < 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if log == nil {
		log = logger.NewNop()
	}
	u := &Uploader{store: store, cfg: cfg, log: log, sleep: sleepCtx}
	for _, o := range opts {
		o(u)
	}
	return u
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (u *Uploader) Backoff(attempt int) time.Duration {
	return u.cfg.BaseDelay << (attempt - 1)
}

// Upload stores data under key. Transient failures are retried; only when
// every attempt fails does it return an UPLOAD_FAILED error carrying the
// last cause.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (Locator, error) {
	var last error
	for attempt := 1; attempt <= u.cfg.MaxAttempts; attempt++ {
		url, err := u.store.Put(ctx, key, contentType, data)
		if err == nil {
			metrics.UploadAttempts.WithLabelValues("ok").Inc()
			return Locator{Key: key, URL: url, Attempts: attempt}, nil
		}
		metrics.UploadAttempts.WithLabelValues("error").Inc()
		last = err
		if attempt == u.cfg.MaxAttempts {
			break
		}

		delay := u.Backoff(attempt)
		u.log.Warn("upload attempt failed, retrying", map[string]any{
			"key":     key,
			"attempt": attempt,
			"backoff": delay.String(),
			"error":   err,
		})
		if err := u.sleep(ctx, delay); err != nil {
			return Locator{}, apperror.UploadFailed(key, attempt, err)
		}
	}
	u.log.Error("upload failed", map[string]any{"key": key, "attempts": u.cfg.MaxAttempts, "error": last})
	return Locator{}, apperror.UploadFailed(key, u.cfg.MaxAttempts, last)
}

// Delete removes key. Failures are returned, not retried.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	return u.store.Delete(ctx, key)
}
