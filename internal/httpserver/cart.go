package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/service"
	"github.com/Skotchmaster/medicart/internal/session"
	"github.com/Skotchmaster/medicart/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) View(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	s, err := session.Load(c)
	if err != nil {
		l.Error("cart_view_error", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	return c.Render(http.StatusOK, "cart", view(c, "Your Cart", map[string]any{
		"Items": s.Cart.Items,
		"Total": s.Cart.Total(),
	}))
}

func cartFailure(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{"success": false, "message": message})
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return cartFailure(c, http.StatusBadRequest, "invalid body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "productId is not uuid", "error", err)
		return cartFailure(c, http.StatusBadRequest, "productId is not uuid")
	}

	s, err := session.Load(c)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot load session", "error", err)
		return cartFailure(c, http.StatusInternalServerError, "cannot load cart")
	}

	count, err := h.Svc.AddItem(ctx, &s.Cart, productID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("add_to_cart_error", "status", 404, "reason", "product not found", "error", err)
			return cartFailure(c, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("add_to_cart_error", "status", 400, "reason", "invalid quantity", "error", err)
			return cartFailure(c, http.StatusBadRequest, "invalid quantity")
		default:
			l.Error("add_to_cart_error", "status", 500, "reason", "cannot add to cart", "error", err)
			return cartFailure(c, http.StatusInternalServerError, "cannot add to cart")
		}
	}

	if err := s.Save(c); err != nil {
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot save session", "error", err)
		return cartFailure(c, http.StatusInternalServerError, "cannot save cart")
	}

	l.Info("add_to_cart_success", "product_id", productID.String(), "cart_count", count)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "cartCount": count})
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	req := transport.RemoveFromCartRequest{Index: -1}
	if err := c.Bind(&req); err != nil {
		l.Warn("remove_from_cart_error", "status", 302, "reason", "invalid index", "error", err)
		req.Index = -1
	}

	s, err := session.Load(c)
	if err != nil {
		l.Error("remove_from_cart_error", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	if h.Svc.RemoveItem(&s.Cart, req.Index) {
		if err := s.Save(c); err != nil {
			l.Error("remove_from_cart_error", "status", 500, "reason", "cannot save session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot save cart")
		}
	} else {
		l.Info("remove_from_cart_ignored", "index", req.Index, "cart_count", s.Cart.Len())
	}

	return c.Redirect(http.StatusFound, "/cart")
}
