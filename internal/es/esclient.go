package es

import (
	"context"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/medicart/internal/logging"
)

type Config struct {
	URL      string
	User     string
	Password string
}

// NewClient connects and checks the cluster answers Info before returning.
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "elasticsearch")
	l.Info("es_connecting", "url", cfg.URL, "auth", cfg.User != "")

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), body)
	}

	l.Info("es_connected")
	return client, nil
}
