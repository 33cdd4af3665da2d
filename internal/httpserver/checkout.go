package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/service"
	"github.com/Skotchmaster/medicart/internal/session"
	"github.com/Skotchmaster/medicart/internal/transport"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) View(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.view")

	s, err := session.Load(c)
	if err != nil {
		l.Error("checkout_view_error", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	return c.Render(http.StatusOK, "checkout", view(c, "Checkout", map[string]any{
		"Items": s.Cart.Items,
		"Total": s.Cart.Total(),
	}))
}

func (h *CheckoutHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.submit")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid checkout form")
	}

	s, err := session.Load(c)
	if err != nil {
		l.Error("checkout_error", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error during checkout")
	}

	rcpt, err := h.Svc.Checkout(ctx, &s.Cart, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			return c.Redirect(http.StatusFound, "/cart")
		case errors.Is(err, service.ErrValidation):
			l.Warn("checkout_error", "status", 400, "reason", "missing contact details", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Name, address and phone are required")
		default:
			l.Error("checkout_error", "status", 500, "reason", "checkout failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Error during checkout")
		}
	}

	if err := s.Save(c); err != nil {
		// the order and invoice exist; only the cart cookie is stale
		l.Error("checkout_error", "status", 200, "reason", "cannot save cleared cart", "order_id", rcpt.OrderID.String(), "error", err)
	}

	l.Info("checkout_success", "order_id", rcpt.OrderID.String())
	return c.Render(http.StatusOK, "thankyou", view(c, "Thank you", map[string]any{
		"Name":          rcpt.CustomerName,
		"Total":         rcpt.Total,
		"PaymentMethod": models.MethodLabel(rcpt.PaymentMethod),
		"Address":       rcpt.Address,
		"Phone":         rcpt.Phone,
		"InvoiceID":     rcpt.OrderID.String(),
	}))
}
