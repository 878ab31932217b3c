package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

// NewLogger creates a new logger instance with production configuration
func NewLogger() (*Logger, error) {
	return newLogger(zap.NewProductionConfig(), zapcore.InfoLevel)
}

// NewDevelopmentLogger creates a human readable logger that also emits debug entries.
func NewDevelopmentLogger() (*Logger, error) {
	return newLogger(zap.NewDevelopmentConfig(), zapcore.DebugLevel)
}

// NewNopLogger returns a logger that discards everything. Used by tests and
// library callers that do not care about simulation logs.
func NewNopLogger() *Logger {
	return &Logger{
		Logger: zap.NewNop(),
	}
}

func newLogger(config zap.Config, level zapcore.Level) (*Logger, error) {
	// Set the output to stdout
	config.OutputPaths = []string{"stdout"}

	// Set the error output to stderr
	config.ErrorOutputPaths = []string{"stderr"}

	config.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// Named returns a child logger scoped to a component, e.g. "ledger" or "cache".
func (l *Logger) Named(name string) *Logger {
	if l == nil || l.Logger == nil {
		return NewNopLogger()
	}

	return &Logger{
		Logger: l.Logger.Named(name),
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
