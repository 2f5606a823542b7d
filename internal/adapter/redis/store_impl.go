package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/facility-scraper/internal/repository"
)

const documentKeyPrefix = "facilities:doc:"

// StoreImpl provides a concrete implementation for the DocumentStore
// interface using Redis string values.
type StoreImpl struct {
	client *redis.Client
}

// NewStore creates a new instance of StoreImpl.
func NewStore(client *redis.Client) *StoreImpl {
	return &StoreImpl{client: client}
}

// Read unmarshals the document stored under key into v.
func (s *StoreImpl) Read(ctx context.Context, key string, v any) error {
	val, err := s.client.Get(ctx, documentKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return repository.ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("read document %q: %w", key, err)
	}
	return json.Unmarshal([]byte(val), v)
}

// Write marshals v and stores it under key. Documents do not expire; the
// catalog must survive between runs.
func (s *StoreImpl) Write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}
	return s.client.Set(ctx, documentKeyPrefix+key, data, 0).Err()
}
