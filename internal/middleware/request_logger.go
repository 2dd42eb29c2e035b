package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/utils"
)

// RequestID tags every request with a UUID in X-Request-ID and stores a
// logger carrying that id in the context.
func RequestID(logger *zap.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set(utils.ContextKeyLogger, logger.With(zap.String("request_id", id)))
		},
	})
}

// RequestLogger writes one structured line per request. Errors are handed
// to the echo error handler first so the logged status is the final one.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				if c.Response().Committed && v.Status < 400 {
					logger.Warn("Request aborted after response started", fields...)
					return nil
				}
				logger.Error("Request failed", fields...)
				return nil
			}
			logger.Info("Request", fields...)
			return nil
		},
	})
}
