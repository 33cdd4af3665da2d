package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/medicart/internal/auth"
	"github.com/Skotchmaster/medicart/internal/middleware/csrf"
	"github.com/Skotchmaster/medicart/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer executes one template set per page, each a clone of the layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "৳ " + d.StringFixed(2) },
	"inc":   func(i int) int { return i + 1 },
}

func NewRenderer() (*Renderer, error) {
	layout, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// view fills the values every page shows: title, CSRF token, cart size and
// the admin principal when present.
func view(c echo.Context, title string, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data["Title"] = title
	data["CSRF"] = csrf.Token(c)
	if s, err := session.Load(c); err == nil {
		data["CartCount"] = s.Cart.Len()
	}
	if p, ok := auth.PrincipalFrom(c.Request().Context()); ok {
		data["Admin"] = p
	}
	return data
}
