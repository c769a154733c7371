package loggingmw

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/logging"
)

const completedMsg = "request completed"

// RequestLogger puts a request-scoped logger into the request context and
// writes one completion line per request. Errors are rendered here so the
// completion line sees the final status.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), base.With(requestAttrs(c)...))))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := []any{"status", res.Status, "duration_ms", time.Since(start).Milliseconds()}
			level := levelFor(res.Status)
			switch {
			case level == slog.LevelError && err != nil:
				attrs = append(attrs, "error", err.Error())
			case level == slog.LevelInfo:
				attrs = append(attrs, "bytes", res.Size)
			}

			// the handler chain may have enriched the logger with the username
			ctx := c.Request().Context()
			logging.FromContext(ctx).Log(ctx, level, completedMsg, attrs...)
			return nil
		}
	}
}

func requestAttrs(c echo.Context) []any {
	req := c.Request()
	attrs := []any{
		"method", req.Method,
		"route", c.Path(),
		"path", req.URL.Path,
		"remote_ip", c.RealIP(),
		"user_agent", req.UserAgent(),
	}
	rid := req.Header.Get(echo.HeaderXRequestID)
	if rid == "" {
		rid = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	if rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	return attrs
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
