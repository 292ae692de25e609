package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"TipFusion/pkg/logger"
)

// RequestLogging logs one line per request. Health probes and scrapes are
// logged at debug level.
func RequestLogging(l *logger.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = logger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("uri", req.RequestURI),
				logger.String("remote_ip", c.RealIP()),
				logger.Int("status", c.Response().Status),
				logger.Duration("latency", time.Since(start)),
			}
			switch {
			case err != nil:
				l.Warn("http request error", append(fields, logger.Error(err))...)
			case c.Path() == "/healthz" || c.Path() == "/metrics":
				l.Debug("http request", fields...)
			default:
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
