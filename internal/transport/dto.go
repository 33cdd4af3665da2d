package transport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
}

// ProductForm is the admin dashboard form. Numbers arrive as text and are
// parsed by ToRequest.
type ProductForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Price       string `form:"price"`
	Category    string `form:"category"`
	ImageURL    string `form:"imageUrl"`
	Stock       string `form:"stock"`
}

func (f ProductForm) ToRequest() (CreateProductRequest, error) {
	req := CreateProductRequest{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		ImageURL:    f.ImageURL,
	}

	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return req, fmt.Errorf("price: %w", err)
	}
	req.Price = price

	if s := strings.TrimSpace(f.Stock); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, fmt.Errorf("stock: %w", err)
		}
		req.Stock = n
	}
	return req, nil
}

type AddToCartRequest struct {
	ProductID string `json:"productId" form:"productId"`
	Quantity  int    `json:"quantity"  form:"quantity"`
}

type RemoveFromCartRequest struct {
	Index int `json:"index" form:"index"`
}

type CheckoutRequest struct {
	Name          string `json:"name"          form:"name"`
	Address       string `json:"address"       form:"address"`
	Phone         string `json:"phone"         form:"phone"`
	PaymentMethod string `json:"paymentMethod" form:"paymentMethod"`
}

type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}
