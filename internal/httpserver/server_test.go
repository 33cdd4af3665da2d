package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/medicart/internal/auth"
	"github.com/Skotchmaster/medicart/internal/db/dbtest"
	"github.com/Skotchmaster/medicart/internal/invoice"
	authmw "github.com/Skotchmaster/medicart/internal/middleware/auth"
	"github.com/Skotchmaster/medicart/internal/middleware/csrf"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/mykafka"
	"github.com/Skotchmaster/medicart/internal/repo"
	"github.com/Skotchmaster/medicart/internal/service"
	"github.com/Skotchmaster/medicart/internal/service/search"
	"github.com/Skotchmaster/medicart/internal/session"
	"github.com/Skotchmaster/medicart/internal/transport"
)

const (
	adminUser = "admin"
	adminPass = "2010445"
)

type testEnv struct {
	E        *echo.Echo
	Repo     *repo.GormRepo
	Catalog  *service.CatalogService
	Invoices *invoice.Generator
	jar      map[string]*http.Cookie
}

func newTestEnv(t *testing.T, withCSRF bool) *testEnv {
	t.Helper()

	gdb := dbtest.Open(t)
	r := &repo.GormRepo{DB: gdb}
	gen := invoice.NewGenerator(invoice.Options{Dir: filepath.Join(t.TempDir(), "invoices")})

	creds, err := auth.NewCredentials(adminUser, adminPass, "")
	require.NoError(t, err)
	issuer := auth.NewIssuer([]byte("test-admin-secret"), time.Hour)

	events := mykafka.Nop{}
	catalog := &service.CatalogService{Repo: r, Search: &search.DB{DB: gdb}, Events: events}
	orders := &service.OrderService{Orders: r, Events: events}

	store, err := session.NewStore(filepath.Join(t.TempDir(), "sessions"), []byte("test-session-secret"), false)
	require.NoError(t, err)

	renderer, err := NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer

	deps := &Deps{
		ShopHandler:     &ShopHTTP{Svc: catalog},
		CartHandler:     &CartHTTP{Svc: &service.CartService{Catalog: catalog}},
		CheckoutHandler: &CheckoutHTTP{Svc: &service.CheckoutService{Orders: r, Invoices: gen, Events: events}},
		InvoiceHandler:  &InvoiceHTTP{Invoices: gen, Orders: orders},
		AdminHandler: &AdminHTTP{
			Admin:   &service.AdminService{Credentials: creds, Issuer: issuer},
			Catalog: catalog,
			Orders:  orders,
		},
		CatalogHandler: &CatalogHTTP{Svc: catalog},
		Guard:          authmw.NewAdminGuard(issuer),
		SessionStore:   store,
		Ready:          r.Ping,
	}
	if withCSRF {
		cfg := csrf.DefaultConfig()
		cfg.SkipPrefixes = []string{"/api/"}
		deps.CSRF = &cfg
	}
	Register(e, deps)

	return &testEnv{E: e, Repo: r, Catalog: catalog, Invoices: gen, jar: map[string]*http.Cookie{}}
}

func (env *testEnv) do(method, target string, body io.Reader, contentType string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if method != http.MethodGet {
		req.Header.Set("Origin", "http://example.com")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	for _, ck := range env.jar {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(env.jar, ck.Name)
			continue
		}
		env.jar[ck.Name] = ck
	}
	return rec
}

func (env *testEnv) get(target string) *httptest.ResponseRecorder {
	return env.do(http.MethodGet, target, nil, "")
}

func (env *testEnv) postForm(target string, vals url.Values) *httptest.ResponseRecorder {
	return env.do(http.MethodPost, target, strings.NewReader(vals.Encode()), echo.MIMEApplicationForm)
}

func (env *testEnv) postJSON(t *testing.T, target string, v any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return env.do(http.MethodPost, target, bytes.NewReader(b), echo.MIMEApplicationJSON, header...)
}

func (env *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p, err := env.Catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "medicine",
		Stock:    10,
	})
	require.NoError(t, err)
	return p
}

func (env *testEnv) addToCart(t *testing.T, p *models.Product, qty int) map[string]any {
	t.Helper()
	rec := env.postJSON(t, "/cart/add", map[string]any{"productId": p.ID.String(), "quantity": qty})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (env *testEnv) loginAdmin(t *testing.T) {
	t.Helper()
	rec := env.postForm("/admin/login", url.Values{"username": {adminUser}, "password": {adminPass}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}

var orderIDPattern = regexp.MustCompile(`id="order-id">([0-9a-f-]{36})<`)

func (env *testEnv) checkout(t *testing.T, method string) string {
	t.Helper()
	rec := env.postForm("/checkout", url.Values{
		"name":          {"Rahim Uddin"},
		"address":       {"House 12, Road 5, Dhaka"},
		"phone":         {"01700000000"},
		"paymentMethod": {method},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := orderIDPattern.FindStringSubmatch(rec.Body.String())
	require.Len(t, m, 2)
	return m[1]
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	assert.Equal(t, http.StatusOK, env.get("/health/live").Code)
	assert.Equal(t, http.StatusOK, env.get("/health/ready").Code)
}

func TestHome_ListsProducts(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Napa Extra", "12.50")

	rec := env.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Napa Extra")
	assert.Contains(t, body, `data-id="`+p.ID.String()+`"`)
	assert.Contains(t, body, "12.50")
}

func TestShop_Search(t *testing.T) {
	env := newTestEnv(t, false)
	env.product(t, "Napa Extra", "12.50")
	env.product(t, "Seclo 20", "7.00")

	rec := env.get("/shop?q=seclo")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seclo 20")
	assert.NotContains(t, rec.Body.String(), "Napa Extra")
}

func TestCartAdd(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Napa Extra", "12.50")

	resp := env.addToCart(t, p, 2)
	assert.Equal(t, true, resp["success"])
	assert.EqualValues(t, 1, resp["cartCount"])

	resp = env.addToCart(t, p, 1)
	assert.EqualValues(t, 2, resp["cartCount"])

	rec := env.get("/cart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "37.50")
}

func TestCartAdd_ManyLines(t *testing.T) {
	env := newTestEnv(t, false)
	p, err := env.Catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name:     "Esomeprazole Magnesium Trihydrate 40mg Cap",
		Price:    decimal.RequireFromString("12.75"),
		Category: "gastro",
		ImageURL: "https://cdn.medicart.example/products/esomeprazole-40mg-capsule-strip.png",
		Stock:    500,
	})
	require.NoError(t, err)

	var resp map[string]any
	for i := 0; i < 50; i++ {
		resp = env.addToCart(t, p, 1)
	}
	assert.EqualValues(t, 50, resp["cartCount"])

	rec := env.get("/cart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "637.50")
}

func TestCartAdd_Failures(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Napa Extra", "12.50")

	rec := env.postJSON(t, "/cart/add", map[string]any{"productId": uuid.NewString(), "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = env.postJSON(t, "/cart/add", map[string]any{"productId": "nope", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.postJSON(t, "/cart/add", map[string]any{"productId": p.ID.String(), "quantity": -3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRemove(t *testing.T) {
	env := newTestEnv(t, false)
	a := env.product(t, "Napa Extra", "12.50")
	b := env.product(t, "Seclo 20", "7.00")
	env.addToCart(t, a, 1)
	env.addToCart(t, b, 1)

	rec := env.postForm("/cart/remove", url.Values{"index": {"5"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))

	body := env.get("/cart").Body.String()
	assert.Contains(t, body, "Napa Extra")
	assert.Contains(t, body, "Seclo 20")

	rec = env.postForm("/cart/remove", url.Values{"index": {"0"}})
	require.Equal(t, http.StatusFound, rec.Code)

	body = env.get("/cart").Body.String()
	assert.NotContains(t, body, "Napa Extra")
	assert.Contains(t, body, "Seclo 20")
}

func TestCheckout_EndToEnd(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Insulin Pen", "500")
	env.addToCart(t, p, 2)

	id := env.checkout(t, "COD")

	order, err := env.Repo.GetOrder(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingCOD, order.PaymentStatus)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(1000)))

	rec := env.get("/invoice/" + id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "MediCART-Invoice-"+id+".pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	assert.Contains(t, env.get("/cart").Body.String(), "Your cart is empty.")
}

func TestCheckout_ThankYouPage(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Insulin Pen", "500")
	env.addToCart(t, p, 2)

	rec := env.postForm("/checkout", url.Values{
		"name":          {"Rahim Uddin"},
		"address":       {"Dhaka"},
		"phone":         {"01700000000"},
		"paymentMethod": {"Online"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Rahim Uddin")
	assert.Contains(t, body, "1000.00")
	assert.Contains(t, body, "Online Payment")
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.postForm("/checkout", url.Values{
		"name":          {"Rahim Uddin"},
		"address":       {"Dhaka"},
		"phone":         {"01700000000"},
		"paymentMethod": {"COD"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
}

func TestCheckout_MissingFields(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Insulin Pen", "500")
	env.addToCart(t, p, 1)

	rec := env.postForm("/checkout", url.Values{"paymentMethod": {"COD"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Contains(t, env.get("/cart").Body.String(), "Insulin Pen")
}

func TestInvoice_Errors(t *testing.T) {
	env := newTestEnv(t, false)

	assert.Equal(t, http.StatusBadRequest, env.get("/invoice/not-a-uuid").Code)

	rec := env.get("/invoice/" + uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invoice not found or not ready yet.")
}

func TestInvoice_RequiresStoredOrder(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Insulin Pen", "500")
	env.addToCart(t, p, 1)
	id := env.checkout(t, "COD")

	require.Equal(t, http.StatusOK, env.get("/invoice/"+id).Code)

	stray := uuid.New()
	require.NoError(t, os.WriteFile(env.Invoices.Path(stray), []byte("%PDF-1.3 stray"), 0o644))
	assert.Equal(t, http.StatusNotFound, env.get("/invoice/"+stray.String()).Code)

	require.NoError(t, os.Remove(env.Invoices.Path(uuid.MustParse(id))))
	assert.Equal(t, http.StatusNotFound, env.get("/invoice/"+id).Code)
}

func TestAdmin_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get("/admin/dashboard")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, authmw.DefaultLoginPath, rec.Header().Get("Location"))

	rec = env.postForm("/admin/login", url.Values{"username": {adminUser}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	assert.Equal(t, http.StatusFound, env.get("/admin/orders").Code)
}

func TestAdmin_ProductsAndOrders(t *testing.T) {
	env := newTestEnv(t, false)
	env.loginAdmin(t)

	rec := env.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.postForm("/admin/add-product", url.Values{
		"name":     {"Fexo 120"},
		"price":    {"9.5"},
		"category": {"antihistamine"},
		"stock":    {"40"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	assert.Contains(t, env.get("/admin/dashboard").Body.String(), "Fexo 120")

	rec = env.postForm("/admin/add-product", url.Values{"name": {"Broken"}, "price": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	products, err := env.Repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	env.addToCart(t, &products[0], 1)
	id := env.checkout(t, "COD")

	for i := 0; i < 2; i++ {
		rec = env.postForm("/admin/orders/"+id+"/paid", url.Values{})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/orders", rec.Header().Get("Location"))
	}
	order, err := env.Repo.GetOrder(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.PaymentStatus)

	rec = env.get("/admin/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)
	assert.Contains(t, rec.Body.String(), "Fexo 120")

	rec = env.postForm("/admin/orders/"+uuid.NewString()+"/delivered", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.postForm("/admin/orders/bad/delivered", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.get("/admin/logout")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, http.StatusFound, env.get("/admin/dashboard").Code)
}

func TestCatalogAPI(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.postJSON(t, "/api/products/add", map[string]any{
		"name":     "Napa Extra",
		"price":    "12.5",
		"category": "pain",
		"stock":    100,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Message string         `json:"message"`
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Product added successfully!", created.Message)
	assert.True(t, created.Product.Price.Equal(decimal.RequireFromString("12.50")))

	env.product(t, "Seclo 20", "7.00")

	rec = env.get("/api/products/all")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = env.get("/api/products?page=2&size=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data []models.Product `json:"data"`
		Meta map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Seclo 20", page.Data[0].Name)
	assert.EqualValues(t, 2, page.Meta["total"])

	rec = env.get("/api/products/" + created.Product.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Napa Extra")

	assert.Equal(t, http.StatusNotFound, env.get("/api/products/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, env.get("/api/products/xyz").Code)

	rec = env.get("/api/products/search?q=napa")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Napa Extra", page.Data[0].Name)

	rec = env.postJSON(t, "/api/products/add", map[string]any{"name": "", "price": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCSRF_RejectsFormWithoutToken(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Napa Extra", "12.50")

	require.Equal(t, http.StatusOK, env.get("/").Code)
	token := env.jar["XSRF-TOKEN"]
	require.NotNil(t, token)

	rec := env.postJSON(t, "/cart/add", map[string]any{"productId": p.ID.String(), "quantity": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.postJSON(t, "/cart/add", map[string]any{"productId": p.ID.String(), "quantity": 1},
		"X-CSRF-Token", token.Value)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.postJSON(t, "/api/products/add", map[string]any{"name": "Seclo 20", "price": "7"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.Error(t, r.Render(io.Discard, "missing", nil, c))

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "error", map[string]any{"Title": "Oops", "Status": 418, "Message": "teapot"}, c))
	assert.Contains(t, buf.String(), "teapot")
}
