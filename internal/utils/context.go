// Package utils provides shared utility functions and constants
package utils

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextKeyLogger is the key used to store the request-scoped logger in the echo context
const ContextKeyLogger = "logger"

// Logger returns the request-scoped logger, or fallback when none was set.
func Logger(c echo.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := c.Get(ContextKeyLogger).(*zap.Logger); ok && logger != nil {
		return logger
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
