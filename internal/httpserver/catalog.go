package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/service"
	"github.com/Skotchmaster/medicart/internal/transport"
	"github.com/Skotchmaster/medicart/internal/util"
)

// CatalogHTTP is the JSON catalog API.
type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not uuid")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "product with this id dont exist", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) AllProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.all_products")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		l.Error("all_products_error", "status", 500, "reason", "cannot fetch products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.GetProducts(ctx, offset, limit)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot fetch products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		l.Error("search_products_error", "status", 500, "reason", "search failed", "query", q, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_error", "status", 400, "reason", "invalid product", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add product")
	}

	l.Info("create_product_success", "product_id", product.ID.String())
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Product added successfully!",
		"product": product,
	})
}
