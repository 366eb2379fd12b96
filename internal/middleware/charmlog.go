// Package middleware adapts echo's request logging onto charmbracelet/log so
// the control socket traffic lands in the same log stream as everything else.
package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog returns an echo middleware that logs each request with method,
// path, status and latency.
func CharmLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"latency", time.Since(start).Round(time.Microsecond),
			}
			if err != nil {
				fields = append(fields, "err", err)
				log.Error("request", fields...)
				return err
			}
			log.Debug("request", fields...)
			return nil
		}
	}
}
