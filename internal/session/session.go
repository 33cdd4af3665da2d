// Package session wraps the gorilla session into a per-request object
// carrying the cart and the admin token. Values live in files on the server;
// the cookie only carries the signed session id.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/cart"
)

const (
	Name = "medicart"

	cartKey  = "cart"
	adminKey = "admin_token"
	ctxKey   = "medicart.session"

	maxAge = 7 * 24 * 60 * 60

	filePrefix = "session_"
)

// NewStore opens a filesystem store under dir. The stored values have no
// size cap, so a cart is not bounded by the cookie limit.
func NewStore(dir string, secret []byte, secure bool) (*sessions.FilesystemStore, error) {
	if dir == "" {
		return nil, errors.New("session dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	store := sessions.NewFilesystemStore(dir, secret)
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// Prune removes session files not written for longer than the cookie lifetime.
func Prune(dir string, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-maxAge * time.Second)
	removed := 0
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasPrefix(ent.Name(), filePrefix) {
			continue
		}
		info, err := ent.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, ent.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Middleware installs the store so Load can find it.
func Middleware(store sessions.Store) echo.MiddlewareFunc {
	return echosession.Middleware(store)
}

type Session struct {
	raw  *sessions.Session
	Cart cart.Cart
}

// Load returns the session for the current request. The first call decodes
// the cookie; later calls in the same request return the same object.
func Load(c echo.Context) (*Session, error) {
	if s, ok := c.Get(ctxKey).(*Session); ok {
		return s, nil
	}

	raw, err := echosession.Get(Name, c)
	if raw == nil {
		return nil, err
	}
	// A cookie signed with an old key yields a fresh session and an error.
	// The fresh session is usable, so the error is dropped.

	s := &Session{raw: raw}
	if v, ok := raw.Values[cartKey].(cart.Cart); ok {
		s.Cart = v
	}
	c.Set(ctxKey, s)
	return s, nil
}

// Save writes the session file and cookie. It must run before the response body.
func (s *Session) Save(c echo.Context) error {
	if s.Cart.Empty() {
		delete(s.raw.Values, cartKey)
	} else {
		s.raw.Values[cartKey] = s.Cart
	}
	return s.raw.Save(c.Request(), c.Response())
}

func (s *Session) AdminToken() string {
	v, _ := s.raw.Values[adminKey].(string)
	return v
}

func (s *Session) SetAdminToken(token string) {
	s.raw.Values[adminKey] = token
}

// Destroy drops every value and expires the cookie.
func (s *Session) Destroy(c echo.Context) error {
	s.Cart.Clear()
	for k := range s.raw.Values {
		delete(s.raw.Values, k)
	}
	s.raw.Options.MaxAge = -1
	if err := s.raw.Save(c.Request(), c.Response()); err != nil {
		return errors.Join(errors.New("destroy session"), err)
	}
	return nil
}
