package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/models"
	"github.com/Skotchmaster/medicart/internal/mykafka"
	"github.com/Skotchmaster/medicart/internal/service/search"
	"github.com/Skotchmaster/medicart/internal/transport"
)

type ProductStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error)
}

type CatalogService struct {
	Repo   ProductStore
	Search search.Searcher
	Events mykafka.Publisher
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return items, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Repo.GetProducts(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return total, items, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	if strings.TrimSpace(q) == "" {
		return 0, []models.Product{}, nil
	}
	return s.Search.Search(ctx, q, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}

	prod, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Stock:       req.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.Search != nil {
		if err := s.Search.Index(ctx, prod); err != nil {
			l.Warn("product_index_error", "product_id", prod.ID.String(), "error", err)
		}
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, prod.ID.String(), mykafka.ProductCreated{
		Type:      "product_created",
		ProductID: prod.ID,
		Name:      prod.Name,
		Price:     prod.Price,
		At:        time.Now().UTC(),
	})

	l.Info("product_created", "product_id", prod.ID.String())
	return prod, nil
}
