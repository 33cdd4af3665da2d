package authmw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/auth"
	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/session"
)

const DefaultLoginPath = "/admin/login"

type AdminGuard struct {
	Issuer    *auth.Issuer
	LoginPath string
}

func NewAdminGuard(issuer *auth.Issuer) *AdminGuard {
	return &AdminGuard{Issuer: issuer, LoginPath: DefaultLoginPath}
}

// RequireAdmin lets the request through only when the session carries a
// valid admin token. The parsed principal is attached to the request context.
func (g *AdminGuard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_admin")

		s, err := session.Load(c)
		if err != nil {
			l.Error("require_admin_error", "status", 500, "reason", "cannot load session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
		}

		raw := s.AdminToken()
		if raw == "" {
			return c.Redirect(http.StatusFound, g.LoginPath)
		}

		p, err := g.Issuer.Parse(raw)
		if err != nil {
			l.Warn("require_admin_error", "status", 302, "reason", "invalid admin token", "error", err)
			s.SetAdminToken("")
			if err := s.Save(c); err != nil {
				l.Error("require_admin_error", "status", 500, "reason", "cannot save session", "error", err)
			}
			return c.Redirect(http.StatusFound, g.LoginPath)
		}

		c.SetRequest(c.Request().WithContext(auth.WithPrincipal(ctx, p)))
		c.Set("role", p.Role)
		return next(c)
	}
}
