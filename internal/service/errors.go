package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/medicart/internal/logging"
	"github.com/Skotchmaster/medicart/internal/mykafka"
)

var (
	ErrValidation         = errors.New("validation")                 // 400
	ErrNotFound           = errors.New("not found")                  // 404
	ErrPersistence        = errors.New("persistence failure")        // 500
	ErrGeneration         = errors.New("invoice generation failure") // 500
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var inflight sync.WaitGroup

// publish sends an event in the background so a slow broker never holds up
// the request. Errors are only logged.
func publish(ctx context.Context, p mykafka.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		if err := p.PublishEvent(ctx, topic, key, event); err != nil {
			logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "key", key, "error", err)
		}
	}()
}

// WaitPublished blocks until background publishes finish or ctx ends.
func WaitPublished(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
