package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPrefixes: []string{"/api/"}}))
	e.GET("/form", func(c echo.Context) error { return c.String(http.StatusOK, Token(c)) })
	e.POST("/submit", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.POST("/api/products/add", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	return e
}

func fetchToken(t *testing.T, e *echo.Echo) (string, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Body.String()
	require.NotEmpty(t, token)
	assert.Equal(t, token, rec.Header().Get("X-CSRF-Token"))

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			return token, ck
		}
	}
	t.Fatal("csrf cookie not set")
	return "", nil
}

func TestPost_WithFormToken(t *testing.T) {
	e := newEcho()
	token, ck := fetchToken(t, e)

	form := url.Values{"csrf_token": {token}}
	req := httptest.NewRequest(http.MethodPost, "http://example.com/submit", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPost_WithHeaderToken(t *testing.T) {
	e := newEcho()
	token, ck := fetchToken(t, e)

	req := httptest.NewRequest(http.MethodPost, "http://example.com/submit", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-CSRF-Token", token)
	req.Header.Set("Referer", "http://example.com/shop")
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPost_Rejected(t *testing.T) {
	e := newEcho()
	token, ck := fetchToken(t, e)

	cases := []struct {
		name   string
		origin string
		token  string
	}{
		{name: "missing token", origin: "http://example.com"},
		{name: "wrong token", origin: "http://example.com", token: "nope"},
		{name: "foreign origin", origin: "http://evil.test", token: token},
		{name: "no origin", token: token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://example.com/submit", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.token != "" {
				req.Header.Set("X-CSRF-Token", tc.token)
			}
			req.AddCookie(ck)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestSkipPrefix(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products/add", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
