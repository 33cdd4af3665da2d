package mykafka

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderCreated struct {
	Type          string          `json:"type"`
	OrderID       uuid.UUID       `json:"orderID"`
	Total         decimal.Decimal `json:"total"`
	Items         int             `json:"items"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	At            time.Time       `json:"at"`
}

type OrderStatusChanged struct {
	Type    string    `json:"type"`
	OrderID uuid.UUID `json:"orderID"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
}

type ProductCreated struct {
	Type      string          `json:"type"`
	ProductID uuid.UUID       `json:"productID"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	At        time.Time       `json:"at"`
}
