package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// Slog logs one line per request.
func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"ip", c.RealIP(),
			}
			if uid := c.Request().Header.Get(HeaderUserID); uid != "" {
				attrs = append(attrs, "user_id", uid)
			}
			if c.Response().Status >= 500 {
				slog.ErrorContext(c.Request().Context(), "http", attrs...)
			} else {
				slog.InfoContext(c.Request().Context(), "http", attrs...)
			}
			return nil
		}
	}
}
