package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/medicart/internal/cart"
)

type CartService struct {
	Catalog *CatalogService
}

// AddItem appends the product to c and returns the new cart size. A zero
// quantity means one.
func (s *CartService) AddItem(ctx context.Context, c *cart.Cart, productID uuid.UUID, quantity int) (int, error) {
	if quantity < 0 {
		return 0, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	if quantity == 0 {
		quantity = 1
	}

	p, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return c.Add(cart.NewItem(p, quantity)), nil
}

// RemoveItem drops the entry at index. Out of range indexes leave c as is.
func (s *CartService) RemoveItem(c *cart.Cart, index int) bool {
	return c.Remove(index)
}
