package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medicart/internal/models"
)

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Items.Product")
}

// CreateOrder inserts the order and its items in one transaction.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := preloadItems(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := preloadItems(r.DB.WithContext(ctx)).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus sets the payment status and returns the status the order
// had before. gorm.ErrRecordNotFound when the order does not exist.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (models.PaymentStatus, error) {
	var prev models.PaymentStatus
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "payment_status").Where("id = ?", id).First(&order).Error; err != nil {
			return err
		}
		prev = order.PaymentStatus
		if prev == status {
			return nil
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status).Error
	})
	if err != nil {
		return "", err
	}
	return prev, nil
}
