package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/logging"
)

// NewErrorHandler renders the error page for site routes and keeps echo's
// JSON errors for the API and probes.
func NewErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		p := c.Request().URL.Path
		if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health/") || e.Renderer == nil {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		data := view(c, http.StatusText(code), map[string]any{"Status": code, "Message": msg})
		if rerr := c.Render(code, "error", data); rerr != nil {
			logging.FromContext(c.Request().Context()).Error("render_error_page_failed", "error", rerr)
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
}
