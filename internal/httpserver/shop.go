package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/service"
	"github.com/Skotchmaster/medicart/internal/service/search"
)

type ShopHTTP struct {
	Svc *service.CatalogService
}

func (h *ShopHTTP) Home(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.home")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		l.Error("home_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error loading products")
	}

	return c.Render(http.StatusOK, "home", view(c, "MediCART", map[string]any{"Products": products}))
}

func (h *ShopHTTP) Shop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.shop")

	q := strings.TrimSpace(c.QueryParam("q"))

	var (
		products []models.Product
		err      error
	)
	if q != "" {
		_, products, err = h.Svc.SearchProducts(ctx, q, 0, search.MaxSize)
	} else {
		products, err = h.Svc.ListProducts(ctx)
	}
	if err != nil {
		l.Error("shop_error", "status", 500, "reason", "cannot load shop", "query", q, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error loading shop")
	}

	return c.Render(http.StatusOK, "shop", view(c, "Shop", map[string]any{
		"Products": products,
		"Query":    q,
	}))
}
