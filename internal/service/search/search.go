package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medicart/internal/models"
)

const MaxSize = 100

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
	Index(ctx context.Context, p *models.Product) error
}

func normalize(query string, from, size int) (string, int, int) {
	q := strings.TrimSpace(query)
	if size <= 0 {
		size = 20
	}
	if size > MaxSize {
		size = MaxSize
	}
	if from < 0 {
		from = 0
	}
	return q, from, size
}

// Elastic searches the product index with a fuzzy multi_match over name and
// description.
type Elastic struct {
	Client    *elasticsearch.Client
	IndexName string
}

func NewElastic(client *elasticsearch.Client, index string) *Elastic {
	return &Elastic{Client: client, IndexName: index}
}

func (e *Elastic) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	q, from, size := normalize(query, from, size)
	if q == "" {
		return 0, []models.Product{}, nil
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.IndexName),
		e.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func (e *Elastic) Index(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index: encode product: %w", err)
	}

	res, err := e.Client.Index(
		e.IndexName,
		bytes.NewReader(data),
		e.Client.Index.WithDocumentID(p.ID.String()),
		e.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index: %s: %s", res.Status(), msg)
	}
	return nil
}

// DB is the fallback used when no search cluster is configured: a
// case-insensitive LIKE over name, description and category.
type DB struct {
	DB *gorm.DB
}

func (s *DB) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	q, from, size := normalize(query, from, size)
	if q == "" {
		return 0, []models.Product{}, nil
	}

	like := "%" + strings.ToLower(q) + "%"
	where := "LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?"
	tx := s.DB.WithContext(ctx).Model(&models.Product{}).Where(where, like, like, like)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, size)
	if err := s.DB.WithContext(ctx).
		Where(where, like, like, like).
		Order("name ASC").
		Offset(from).
		Limit(size).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// Index is a no-op: the LIKE search reads the products table directly.
func (s *DB) Index(context.Context, *models.Product) error { return nil }
