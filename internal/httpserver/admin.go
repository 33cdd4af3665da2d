package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/service"
	"github.com/Skotchmaster/medicart/internal/session"
	"github.com/Skotchmaster/medicart/internal/transport"
)

type AdminHTTP struct {
	Admin   *service.AdminService
	Catalog *service.CatalogService
	Orders  *service.OrderService
}

func (h *AdminHTTP) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "admin_login", view(c, "Admin Login", map[string]any{"Username": ""}))
}

func (h *AdminHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("admin_login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	token, _, err := h.Admin.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("admin_login_error", "status", 401, "reason", "invalid credentials", "username", req.Username)
			return c.Render(http.StatusUnauthorized, "admin_login", view(c, "Admin Login", map[string]any{
				"Error":    "Invalid username or password",
				"Username": req.Username,
			}))
		}
		l.Error("admin_login_error", "status", 500, "reason", "cannot issue token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}

	s, err := session.Load(c)
	if err != nil {
		l.Error("admin_login_error", "status", 500, "reason", "cannot load session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}
	s.SetAdminToken(token)
	if err := s.Save(c); err != nil {
		l.Error("admin_login_error", "status", 500, "reason", "cannot save session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}

	return c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (h *AdminHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.logout")

	s, err := session.Load(c)
	if err == nil {
		err = s.Destroy(c)
	}
	if err != nil {
		l.Error("admin_logout_error", "status", 500, "reason", "cannot destroy session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log out")
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	products, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		l.Error("admin_dashboard_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error loading products")
	}
	return c.Render(http.StatusOK, "admin_dashboard", view(c, "Admin Dashboard", map[string]any{"Products": products}))
}

func (h *AdminHTTP) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.add_product")

	var form transport.ProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn("add_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product form")
	}
	req, err := form.ToRequest()
	if err != nil {
		l.Warn("add_product_error", "status", 400, "reason", "invalid number", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product form")
	}

	if _, err := h.Catalog.CreateProduct(ctx, req); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("add_product_error", "status", 400, "reason", "invalid product", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid product form")
		}
		l.Error("add_product_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error adding product")
	}

	return c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (h *AdminHTTP) Orders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	orders, err := h.Orders.ListOrders(ctx)
	if err != nil {
		l.Error("admin_orders_error", "status", 500, "reason", "cannot load orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error loading orders")
	}
	return c.Render(http.StatusOK, "admin_orders", view(c, "Orders", map[string]any{"Orders": orders}))
}

func (h *AdminHTTP) MarkDelivered(c echo.Context) error {
	return h.setStatus(c, models.StatusDelivered)
}

func (h *AdminHTTP) MarkPaid(c echo.Context) error {
	return h.setStatus(c, models.StatusPaid)
}

func (h *AdminHTTP) setStatus(c echo.Context, status models.PaymentStatus) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_status", "to", status)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("set_status_error", "status", 400, "reason", "id is not uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	if err := h.Orders.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("set_status_error", "status", 404, "reason", "order not found", "order_id", id.String())
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		l.Error("set_status_error", "status", 500, "reason", "cannot update order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error updating order")
	}

	return c.Redirect(http.StatusFound, "/admin/orders")
}
