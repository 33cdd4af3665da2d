package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/medicart/internal/cart"
	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
)

const utf8Family = "NotoSans"

type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type Document struct {
	OrderID       uuid.UUID
	CustomerName  string
	Address       string
	Phone         string
	Lines         []Line
	Total         decimal.Decimal
	PaymentMethod string
	PaymentStatus string
}

// NewDocument builds the invoice content from a persisted order and the cart
// it was created from. Unit prices come from the cart line totals.
func NewDocument(order *models.Order, snapshot cart.Cart) Document {
	lines := make([]Line, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		lines = append(lines, Line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice(),
			LineTotal: it.LineTotal,
		})
	}
	return Document{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		Address:       order.Address,
		Phone:         order.Phone,
		Lines:         lines,
		Total:         order.TotalPrice,
		PaymentMethod: models.MethodLabel(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
	}
}

func (g *Generator) money(d decimal.Decimal) string {
	return g.currency + " " + d.StringFixed(2)
}

func (g *Generator) render(ctx context.Context, doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetCompression(g.compress)
	pdf.SetTitle(fmt.Sprintf("%s Invoice %s", g.shop, doc.OrderID), true)
	pdf.SetCreator(g.shop, true)

	family, bold := "Helvetica", "B"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if g.fontPath != "" {
		if _, err := os.Stat(g.fontPath); err == nil {
			pdf.AddUTF8Font(utf8Family, "", g.fontPath)
			family, bold = utf8Family, ""
			tr = func(s string) string { return s }
		} else {
			logging.FromContext(ctx).Warn("invoice_font_missing", "font", g.fontPath, "fallback", family)
		}
	}

	pdf.AddPage()

	pdf.SetFont(family, bold, 22)
	pdf.CellFormat(0, 12, tr(g.shop+" Invoice"), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont(family, "", 13)
	for _, row := range []string{
		"Order ID: " + doc.OrderID.String(),
		"Customer: " + doc.CustomerName,
		"Address: " + doc.Address,
		"Phone: " + doc.Phone,
	} {
		pdf.MultiCell(0, 7, tr(row), "", "L", false)
	}
	pdf.Ln(5)

	pdf.SetFont(family, "U", 16)
	pdf.CellFormat(0, 9, tr("Order Summary"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(family, "", 12)
	for i, ln := range doc.Lines {
		text := fmt.Sprintf("%d. %s - %d x %s = %s",
			i+1, ln.Name, ln.Quantity, g.money(ln.UnitPrice), g.money(ln.LineTotal))
		pdf.MultiCell(0, 6, tr(text), "", "L", false)
	}
	pdf.Ln(5)

	pdf.SetFont(family, bold, 14)
	pdf.CellFormat(0, 8, tr("Total: "+g.money(doc.Total)), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont(family, "", 13)
	pdf.CellFormat(0, 7, tr("Payment Method: "+doc.PaymentMethod), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Status: "+doc.PaymentStatus), "", 1, "L", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Thank you for shopping with %s!", g.shop)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Join(ErrRender, err)
	}
	return buf.Bytes(), nil
}
