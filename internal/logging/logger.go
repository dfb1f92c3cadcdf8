package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "NODEBOARD_LOG_LEVEL"

// Initialize creates a new logger with the specified level writing to stdout.
// If level is empty, it checks NODEBOARD_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	return build(level, "stdout")
}

// InitializeToFile is like Initialize but writes log entries to path.
// The terminal dashboard uses this so log output never lands on the
// screen bubbletea is drawing. An empty path falls back to silent mode.
func InitializeToFile(level string, path string) error {
	if path == "" {
		logger = zap.NewNop()
		return nil
	}
	return build(level, path)
}

// InitializeFromEnv initializes the logger from the NODEBOARD_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

func build(level string, output string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if output == "stdout" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// ParseLevel maps a level name to a zap level.
// Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogRequest logs the outcome of an inventory API round-trip
func LogRequest(method string, url string, statusCode int, err error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
	}
	if err != nil {
		Warn("Inventory API request failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("Inventory API request completed", fields...)
}

// LogTransition logs a state machine transition
func LogTransition(component string, from string, to string, event string) {
	Debug("State transition",
		zap.String("component", component),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("event", event),
	)
}

// LogIgnoredEvent logs an event that has no transition from the current state
func LogIgnoredEvent(component string, state string, event string) {
	Debug("Event ignored in current state",
		zap.String("component", component),
		zap.String("state", state),
		zap.String("event", event),
	)
}

// LogSubstitution logs a default substituted for unparseable input
func LogSubstitution(field string, index int, raw string, fallback string) {
	Warn("Unparseable value replaced with default",
		zap.String("field", field),
		zap.Int("index", index),
		zap.String("raw", raw),
		zap.String("fallback", fallback),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
