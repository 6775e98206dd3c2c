package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

// RequestLogger puts a request-scoped logger into the context and writes one
// status-tiered line per request.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				"method", req.Method,
				"route", c.Path(),
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			ms := time.Since(start).Milliseconds()

			switch {
			case err != nil:
				l.Error("http_request_completed", "status", status, "duration_ms", ms, "error", err.Error())
			case status >= 500:
				l.Error("http_request_completed", "status", status, "duration_ms", ms)
			case status >= 400:
				l.Warn("http_request_completed", "status", status, "duration_ms", ms)
			default:
				l.Info("http_request_completed", "status", status, "duration_ms", ms)
			}
			return nil
		}
	}
}
