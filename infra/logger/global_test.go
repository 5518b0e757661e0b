package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetGlobal() {
	globalLogger = nil
	once = sync.Once{}
}

func TestInitGlobalLogger(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	InitGlobalLogger(nil)

	assert.NotNil(t, globalLogger)
	assert.Equal(t, "gopaysafe", globalLogger.service)
	assert.Equal(t, "1.0.0", globalLogger.version)
	assert.False(t, globalLogger.enableOpenSearch)
}

func TestGetGlobalLogger(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	logger := GetGlobalLogger()
	assert.NotNil(t, logger)
	assert.Equal(t, "gopaysafe", logger.service)
	assert.Equal(t, LevelInfo, logger.minLevel)
	assert.Same(t, logger, GetGlobalLogger())
}

func TestGlobalLoggerConvenienceFunctions(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	InitGlobalLogger(nil)
	globalLogger.enableConsole = false

	Debug("Debug message")
	Info("Info message")
	Warn("Warning message")
	Error("Error message", nil)

	ctx := LogContext{StoreID: "1"}
	Debug("Debug with context", ctx)
	Info("Info with context", ctx)
	Warn("Warning with context", ctx)
	Error("Error with context", nil, ctx)
}

func TestWithContext(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	InitGlobalLogger(nil)

	contextLogger := WithContext(LogContext{StoreID: "3", Provider: "paysafe"})
	assert.Equal(t, "3", contextLogger.context.StoreID)
	assert.Equal(t, "paysafe", contextLogger.context.Provider)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}

	for name, expected := range tests {
		assert.Equal(t, expected, ParseLevel(name), name)
	}
}

func TestSetGlobalLogger(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	custom := NewSystemLogger(nil, SystemLoggerConfig{Service: "custom"})
	SetGlobalLogger(custom)

	assert.Same(t, custom, GetGlobalLogger())
}
