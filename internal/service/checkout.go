package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/medicart/internal/cart"
	"github.com/Skotchmaster/medicart/internal/invoice"
	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/mykafka"
	"github.com/Skotchmaster/medicart/internal/transport"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (models.PaymentStatus, error)
}

type InvoiceWriter interface {
	Generate(ctx context.Context, doc invoice.Document) (string, error)
}

type CheckoutService struct {
	Orders   OrderStore
	Invoices InvoiceWriter
	Events   mykafka.Publisher
}

type Receipt struct {
	OrderID       uuid.UUID
	CustomerName  string
	Total         decimal.Decimal
	PaymentMethod string
	Address       string
	Phone         string
	InvoicePath   string
}

// Checkout turns the cart into an order. The steps run strictly in order:
// persist the order, write the invoice and wait for the file, then clear the
// cart. A failure before the invoice is written leaves c untouched.
func (s *CheckoutService) Checkout(ctx context.Context, c *cart.Cart, req transport.CheckoutRequest) (*Receipt, error) {
	l := logging.FromContext(ctx).With("svc", "checkout")

	if c.Empty() {
		return nil, ErrEmptyCart
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Address == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: name, address and phone are required", ErrValidation)
	}

	total := c.Total()
	items := make([]models.OrderItem, 0, c.Len())
	for _, it := range c.Items {
		items = append(items, models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := s.Orders.CreateOrder(ctx, &models.Order{
		Items:         items,
		TotalPrice:    total,
		CustomerName:  req.Name,
		Address:       req.Address,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.StatusForMethod(req.PaymentMethod),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrPersistence, err)
	}
	l = l.With("order_id", order.ID.String())

	path, err := s.Invoices.Generate(ctx, invoice.NewDocument(order, c.Snapshot()))
	if err != nil {
		l.Error("invoice_generation_error", "error", err)
		return nil, fmt.Errorf("%w: order %s: %v", ErrGeneration, order.ID, err)
	}

	c.Clear()

	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID.String(), mykafka.OrderCreated{
		Type:          "order_created",
		OrderID:       order.ID,
		Total:         order.TotalPrice,
		Items:         len(order.Items),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: string(order.PaymentStatus),
		At:            time.Now().UTC(),
	})

	l.Info("checkout_complete", "total", total.StringFixed(2), "items", len(items))
	return &Receipt{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		Total:         order.TotalPrice,
		PaymentMethod: order.PaymentMethod,
		Address:       order.Address,
		Phone:         order.Phone,
		InvoicePath:   path,
	}, nil
}
