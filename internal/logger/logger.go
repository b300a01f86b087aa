// Package logger provides a structured logging wrapper using zap.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// L is the global logger instance
	L           *zap.Logger
	defaultOnce sync.Once
)

// Init initializes the global logger, replacing one set up earlier.
// Call it before logging starts from other goroutines.
// Debug mode logs human-readable DEBUG output to stderr; otherwise JSON at INFO.
func Init(debug bool) {
	logger, err := build(debug)
	if err != nil {
		logger = zap.NewNop()
	}
	if L != nil {
		_ = L.Sync()
	}
	L = logger
}

func build(debug bool) (*zap.Logger, error) {
	if debug {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return config.Build()
	}
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

// Sync flushes any buffered log entries.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

// Default returns the global logger, initializing it from LOG_DEBUG when unset.
func Default() *zap.Logger {
	defaultOnce.Do(func() {
		if L == nil {
			Init(os.Getenv("LOG_DEBUG") == "true")
		}
	})
	return L
}

// With creates a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return Default().With(fields...)
}

// MaskKey shortens a secret for log output.
func MaskKey(key string) string {
	const visible = 20
	if len(key) <= visible {
		return key + "..."
	}
	return key[:visible] + "..."
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Default().Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Default().Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Default().Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Default().Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	Default().Fatal(msg, fields...)
}
