package logger

import (
	"strings"
	"sync"

	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/opensearch"
)

var (
	globalLogger *SystemLogger
	globalMu     sync.Mutex
	once         sync.Once
)

func defaultConfig(environment string, level LogLevel) SystemLoggerConfig {
	return SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      level,
		Service:       "gopaysafe",
		Version:       "1.0.0",
		Environment:   environment,
	}
}

// ParseLevel maps a configured level name onto a LogLevel, falling back to info
func ParseLevel(name string) LogLevel {
	switch level := LogLevel(strings.ToLower(strings.TrimSpace(name))); level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
		return level
	default:
		return LevelInfo
	}
}

// InitGlobalLogger initializes the global system logger. A nil openSearchLogger keeps console output only.
func InitGlobalLogger(openSearchLogger *opensearch.Logger) {
	once.Do(func() {
		appConfig := config.GetAppConfig()
		cfg := defaultConfig(appConfig.Environment, ParseLevel(appConfig.LoggingLevel))
		cfg.EnableOpenSearch = openSearchLogger.IsEnabled()

		SetGlobalLogger(NewSystemLogger(openSearchLogger, cfg))
	})
}

// SetGlobalLogger replaces the global logger
func SetGlobalLogger(logger *SystemLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		// console-only until InitGlobalLogger runs
		globalLogger = NewSystemLogger(nil, defaultConfig("development", LevelInfo))
	}
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

// Info logs an info message using the global logger
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

// Warn logs a warning message using the global logger
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

// Error logs an error message using the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// WithContext creates a context logger from the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}
