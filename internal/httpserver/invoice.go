package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medicart/internal/invoice"
	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/service"
)

type InvoiceLocator interface {
	Locate(ctx context.Context, orderID uuid.UUID) (string, error)
	DownloadName(orderID uuid.UUID) string
}

type OrderLookup interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// InvoiceHTTP serves invoice downloads. Only ids of stored orders are looked
// up on disk.
type InvoiceHTTP struct {
	Invoices InvoiceLocator
	Orders   OrderLookup
}

func (h *InvoiceHTTP) Download(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "invoice.download")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("invoice_download_error", "status", 400, "reason", "id is not uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid invoice id")
	}

	if _, err := h.Orders.GetOrder(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("invoice_download_error", "status", 404, "reason", "order missing", "order_id", id.String())
			return echo.NewHTTPError(http.StatusNotFound, "Invoice not found or not ready yet.")
		}
		l.Error("invoice_download_error", "status", 500, "reason", "cannot load order", "order_id", id.String(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load invoice")
	}

	path, err := h.Invoices.Locate(ctx, id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			l.Warn("invoice_download_error", "status", 404, "reason", "invoice missing", "order_id", id.String())
			return echo.NewHTTPError(http.StatusNotFound, "Invoice not found or not ready yet.")
		}
		l.Error("invoice_download_error", "status", 500, "reason", "cannot locate invoice", "order_id", id.String(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load invoice")
	}

	return c.Attachment(path, h.Invoices.DownloadName(id))
}
