package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the structured logging surface injected into use cases.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	With(fields map[string]any) Logger
}

// NewZap builds a zap logger. format "json" selects the production encoder.
func NewZap(levelStr, format string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

type zapWrapper struct{ l *zap.Logger }

func (z *zapWrapper) Debug(msg string, fields map[string]any) { z.l.Debug(msg, toZap(fields)...) }
func (z *zapWrapper) Info(msg string, fields map[string]any)  { z.l.Info(msg, toZap(fields)...) }
func (z *zapWrapper) Warn(msg string, fields map[string]any)  { z.l.Warn(msg, toZap(fields)...) }
func (z *zapWrapper) Error(msg string, fields map[string]any) { z.l.Error(msg, toZap(fields)...) }

func (z *zapWrapper) With(fields map[string]any) Logger {
	return &zapWrapper{l: z.l.With(toZap(fields)...)}
}

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

func New(levelStr, format string) (Logger, error) {
	l, err := NewZap(levelStr, format)
	if err != nil {
		return nil, err
	}
	return &zapWrapper{l: l}, nil
}

func FromZap(l *zap.Logger) Logger { return &zapWrapper{l: l} }

func NewNop() Logger { return &zapWrapper{l: zap.NewNop()} }

func NewTest(t testing.TB) Logger { return &zapWrapper{l: zaptest.NewLogger(t)} }
