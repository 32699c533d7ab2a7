// Package logging wraps zap with the dispatch engine's ambient logging
// conventions, grounded on the teacher pack's zap-based service logger
// (nanneboina449-draymaster-tms/shared/pkg/logger).
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap sugared logger; never stored in a package-global,
// always threaded explicitly so the solver's sub-tour callback (which
// must stay reentrant and untouched by outer state) never receives it.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger at the given level ("debug", "info", "warn",
// "error"); any other value defaults to "info".
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	switch level {
	case "debug":
		cfg.Level.SetLevel(zapcore.DebugLevel)
	case "warn":
		cfg.Level.SetLevel(zapcore.WarnLevel)
	case "error":
		cfg.Level.SetLevel(zapcore.ErrorLevel)
	default:
		cfg.Level.SetLevel(zapcore.InfoLevel)
	}

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{base.Sugar()}, nil
}

// WithTick returns a logger scoped to one tick id, matching the
// teacher's WithFields-style contextual-logger helpers.
func (l *Logger) WithTick(tickID string) *Logger {
	return &Logger{l.SugaredLogger.With("tick_id", tickID)}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}
