package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const storageKeyPrefix = "yeoubi-cart"

type Persister interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Save(ctx context.Context, sessionID string, items []domain.CartItem) error
}

type persistedState struct {
	Items []domain.CartItem `json:"items"`
}

type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{
		client: client,
		ttl:    ttl,
	}
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	data, err := p.client.Get(ctx, storageKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return state.Items, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, items []domain.CartItem) error {
	data, err := json.Marshal(persistedState{Items: items})
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := p.client.Set(ctx, storageKey(sessionID), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func storageKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", storageKeyPrefix, sessionID)
}
