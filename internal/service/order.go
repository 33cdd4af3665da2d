package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/mykafka"
)

type OrderService struct {
	Orders OrderStore
	Events mykafka.Publisher
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.Orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return orders, nil
}

// SetStatus moves an order to Paid or Delivered. Setting the current status
// again changes nothing.
func (s *OrderService) SetStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	if status != models.StatusPaid && status != models.StatusDelivered {
		return fmt.Errorf("%w: status %q not allowed", ErrValidation, status)
	}

	prev, err := s.Orders.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if prev == status {
		return nil
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, id.String(), mykafka.OrderStatusChanged{
		Type:    "order_status_changed",
		OrderID: id,
		From:    string(prev),
		To:      string(status),
		At:      time.Now().UTC(),
	})
	logging.FromContext(ctx).Info("order_status_changed", "order_id", id.String(), "from", prev, "to", status)
	return nil
}
