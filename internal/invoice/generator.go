// Package invoice renders order invoices to PDF and stores them on disk,
// one file per order under a deterministic name.
//
// Rendering is synchronous. The file write happens on its own goroutine and
// is tracked by a Pending handle; callers that need the file (the checkout
// pipeline, the download handler) wait on that handle instead of polling
// the filesystem.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/medicart/internal/logging"
)

var (
	ErrNotFound = errors.New("invoice not found")
	ErrRender   = errors.New("invoice render failed")
	ErrWrite    = errors.New("invoice write failed")
)

type Options struct {
	Dir      string
	FontPath string
	Compress bool
	ShopName string
	Currency string
}

type Generator struct {
	dir      string
	fontPath string
	compress bool
	shop     string
	currency string

	mu      sync.Mutex
	pending map[uuid.UUID]*Pending
}

func NewGenerator(opts Options) *Generator {
	if opts.Dir == "" {
		opts.Dir = "invoices"
	}
	if opts.ShopName == "" {
		opts.ShopName = "MediCART"
	}
	if opts.Currency == "" {
		opts.Currency = "Tk"
	}
	return &Generator{
		dir:      opts.Dir,
		fontPath: opts.FontPath,
		compress: opts.Compress,
		shop:     opts.ShopName,
		currency: opts.Currency,
		pending:  make(map[uuid.UUID]*Pending),
	}
}

// Pending tracks one asynchronous invoice write.
type Pending struct {
	orderID uuid.UUID
	path    string
	done    chan struct{}
	err     error
}

func (p *Pending) Path() string { return p.path }

// Wait blocks until the write finished and returns its result.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Generator) Path(orderID uuid.UUID) string {
	return filepath.Join(g.dir, fmt.Sprintf("invoice-%s.pdf", orderID))
}

func (g *Generator) DownloadName(orderID uuid.UUID) string {
	return fmt.Sprintf("%s-Invoice-%s.pdf", g.shop, orderID)
}

// Start renders doc and schedules the file write. The returned handle is
// registered until the write completes, so Locate calls for the same order
// observe it.
func (g *Generator) Start(ctx context.Context, doc Document) (*Pending, error) {
	l := logging.FromContext(ctx).With("component", "invoice", "order_id", doc.OrderID.String())

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir: %v", ErrWrite, err)
	}

	data, err := g.render(ctx, doc)
	if err != nil {
		return nil, err
	}

	p := &Pending{
		orderID: doc.OrderID,
		path:    g.Path(doc.OrderID),
		done:    make(chan struct{}),
	}

	g.mu.Lock()
	g.pending[doc.OrderID] = p
	g.mu.Unlock()

	go func() {
		p.err = writeAtomic(g.dir, p.path, data)
		if p.err != nil {
			l.Error("invoice_write_error", "path", p.path, "error", p.err)
		} else {
			l.Info("invoice_written", "path", p.path, "bytes", len(data))
		}

		g.mu.Lock()
		if g.pending[p.orderID] == p {
			delete(g.pending, p.orderID)
		}
		g.mu.Unlock()
		close(p.done)
	}()

	return p, nil
}

// Generate renders and writes the invoice, returning once the file is on disk.
// The order is already stored by then, so a cancelled ctx does not abort the
// wait.
func (g *Generator) Generate(ctx context.Context, doc Document) (string, error) {
	p, err := g.Start(ctx, doc)
	if err != nil {
		return "", err
	}
	if err := p.Wait(context.WithoutCancel(ctx)); err != nil {
		return "", err
	}
	return p.Path(), nil
}

// Locate returns the invoice path for an order. An in-flight write for the
// order is waited on first.
func (g *Generator) Locate(ctx context.Context, orderID uuid.UUID) (string, error) {
	g.mu.Lock()
	p := g.pending[orderID]
	g.mu.Unlock()

	if p != nil {
		if err := p.Wait(ctx); err != nil {
			return "", err
		}
	}

	path := g.Path(orderID)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() || info.Size() == 0 {
		return "", ErrNotFound
	}
	return path, nil
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".invoice-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
