package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	Name        string          `gorm:"not null"                       json:"name"`
	Description string          `gorm:"not null;default:''"            json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"    json:"price"`
	Category    string          `gorm:"index"                          json:"category"`
	ImageURL    string          `gorm:"size:1024"                      json:"imageUrl"`
	Stock       int             `gorm:"not null;default:0"             json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PaymentStatus string

const (
	StatusPendingCOD    PaymentStatus = "Pending (Cash on Delivery)"
	StatusPendingOnline PaymentStatus = "Pending (Online)"
	StatusPaid          PaymentStatus = "Paid"
	StatusDelivered     PaymentStatus = "Delivered"
)

const PaymentMethodCOD = "COD"

// StatusForMethod maps the submitted payment method to the initial status.
func StatusForMethod(method string) PaymentStatus {
	if method == PaymentMethodCOD {
		return StatusPendingCOD
	}
	return StatusPendingOnline
}

// MethodLabel is the human readable payment method printed on invoices.
func MethodLabel(method string) string {
	if method == PaymentMethodCOD {
		return "Cash on Delivery"
	}
	return "Online Payment"
}

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                          json:"id"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"                   json:"totalPrice"`
	CustomerName  string          `gorm:"not null;default:''"                           json:"customerName"`
	Address       string          `gorm:"not null;default:''"                           json:"address"`
	Phone         string          `gorm:"not null;default:''"                           json:"phone"`
	PaymentMethod string          `gorm:"size:32"                                       json:"paymentMethod"`
	PaymentStatus PaymentStatus   `gorm:"size:64;not null;index"                        json:"paymentStatus"`
	CreatedAt     time.Time       `gorm:"index"                                         json:"orderDate"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"  json:"orderId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"        json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID"      json:"product,omitempty"`
	Quantity  int       `gorm:"not null;check:quantity>0" json:"quantity"`
	Position  int       `gorm:"not null;default:0"        json:"-"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

var Tables = []any{
	&Product{},
	&Order{},
	&OrderItem{},
}
