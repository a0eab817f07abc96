package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every production entry.
const Service = "sushi-pos"

var current atomic.Pointer[zap.Logger]

// New builds a logger for env without installing it. "production" writes
// unsampled JSON to stdout, "test" discards everything, anything else is a
// colored console logger at debug level.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "test":
		return zap.NewNop(), nil
	case "production":
		cfg := zap.NewProductionConfig()
		cfg.Sampling = nil
		cfg.OutputPaths = []string{"stdout"}
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		cfg.InitialFields = map[string]any{"service": Service}
		return cfg.Build()
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		return cfg.Build()
	}
}

// Init installs the logger for env as the process logger.
func Init(env string) error {
	l, err := New(env)
	if err != nil {
		return err
	}
	Replace(l)
	return nil
}

// Replace installs l and returns a func that puts the previous logger back.
func Replace(l *zap.Logger) (restore func()) {
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

// L returns the process logger. Before Init it builds one from APP_ENV,
// falling back to a no-op logger if that fails.
func L() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	l, err := New(os.Getenv("APP_ENV"))
	if err != nil {
		l = zap.NewNop()
	}
	if current.CompareAndSwap(nil, l) {
		return l
	}
	return current.Load()
}

// Sync flushes the process logger, if one was built.
func Sync() {
	if l := current.Load(); l != nil {
		_ = l.Sync()
	}
}
