package log

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// Log writes msg at level with the given structured fields.
// Fields are emitted in key order so log lines are stable.
func Log(logger *zap.Logger, level LogLevel, msg string, fields map[string]interface{}) {
	if logger == nil {
		return
	}
	zfs := Fields(fields)

	switch level {
	case LogInfo:
		logger.Info(msg, zfs...)
	case LogWarn:
		logger.Warn(msg, zfs...)
	case LogError:
		logger.Error(msg, zfs...)
	case LogDebug:
		logger.Debug(msg, zfs...)
	default:
		logger.Info(msg, zfs...)
	}
}

// Fields converts a field map to zap fields.
func Fields(fields map[string]interface{}) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zfs := make([]zap.Field, 0, len(fields))
	for _, k := range keys {
		zfs = append(zfs, zap.Any(k, fields[k]))
	}
	return zfs
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// NewTestLogger returns a debug-level console logger writing to stdout.
func NewTestLogger() *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}
