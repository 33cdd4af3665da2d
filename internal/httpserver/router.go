package httpserver

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/medicart/internal/middleware/auth"
	"github.com/Skotchmaster/medicart/internal/middleware/csrf"
	"github.com/Skotchmaster/medicart/internal/session"
)

type Deps struct {
	ShopHandler     *ShopHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	InvoiceHandler  *InvoiceHTTP
	AdminHandler    *AdminHTTP
	CatalogHandler  *CatalogHTTP

	Guard        *authmw.AdminGuard
	SessionStore sessions.Store
	CSRF         *csrf.Config
	StaticDir    string

	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = NewErrorHandler(e)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.StaticDir != "" {
		e.Static("/static", d.StaticDir)
	}

	api := e.Group("/api/products")
	api.GET("", d.CatalogHandler.GetProducts)
	api.GET("/all", d.CatalogHandler.AllProducts)
	api.GET("/search", d.CatalogHandler.SearchProducts)
	api.GET("/:id", d.CatalogHandler.GetProduct)
	api.POST("/add", d.CatalogHandler.CreateProduct)

	mws := []echo.MiddlewareFunc{session.Middleware(d.SessionStore)}
	if d.CSRF != nil {
		mws = append(mws, csrf.Middleware(*d.CSRF))
	}
	site := e.Group("", mws...)

	site.GET("/", d.ShopHandler.Home)
	site.GET("/shop", d.ShopHandler.Shop)

	site.GET("/cart", d.CartHandler.View)
	site.POST("/cart/add", d.CartHandler.Add)
	site.POST("/cart/remove", d.CartHandler.Remove)

	site.GET("/checkout", d.CheckoutHandler.View)
	site.POST("/checkout", d.CheckoutHandler.Submit)

	site.GET("/invoice/:id", d.InvoiceHandler.Download)

	site.GET("/admin/login", d.AdminHandler.LoginPage)
	site.POST("/admin/login", d.AdminHandler.Login)
	site.GET("/admin/logout", d.AdminHandler.Logout)

	admin := site.Group("/admin", d.Guard.RequireAdmin)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)
	admin.POST("/add-product", d.AdminHandler.AddProduct)
	admin.GET("/orders", d.AdminHandler.Orders)
	admin.POST("/orders/:id/delivered", d.AdminHandler.MarkDelivered)
	admin.POST("/orders/:id/paid", d.AdminHandler.MarkPaid)
}
