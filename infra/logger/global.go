package logger

import (
	"os"
	"sync"

	"github.com/circletel/payments/infra/opensearch"
)

var (
	globalLogger *SystemLogger
	loggerOnce   sync.Once
)

// InitGlobalLogger initializes the global system logger
func InitGlobalLogger(openSearchLogger *opensearch.Logger) {
	loggerOnce.Do(func() {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		version := os.Getenv("APP_VERSION")
		if version == "" {
			version = "1.0.0"
		}

		minLevel := LevelInfo
		if environment == "development" {
			minLevel = LevelDebug
		}
		if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
			switch LogLevel(lvl) {
			case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
				minLevel = LogLevel(lvl)
			}
		}

		config := SystemLoggerConfig{
			EnableConsole:    true,
			EnableOpenSearch: openSearchLogger != nil,
			MinLevel:         minLevel,
			Service:          "circletel-payments",
			Version:          version,
			Environment:      environment,
		}

		globalLogger = NewSystemLogger(openSearchLogger, config)
	})
}

// GetLogger returns the global system logger
func GetLogger() *SystemLogger {
	if globalLogger == nil {
		InitGlobalLogger(nil)
	}
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(message string, ctx ...LogContext) {
	GetLogger().Debug(message, ctx...)
}

// Info logs an info message using the global logger
func Info(message string, ctx ...LogContext) {
	GetLogger().Info(message, ctx...)
}

// Warn logs a warning message using the global logger
func Warn(message string, ctx ...LogContext) {
	GetLogger().Warn(message, ctx...)
}

// Error logs an error message using the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetLogger().Fatal(message, err, ctx...)
}
