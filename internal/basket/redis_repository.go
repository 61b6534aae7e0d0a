package basket

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore is the subset of the redis client the basket slot needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Update(ctx context.Context, key string, ttl time.Duration, fn func(current string, found bool) (string, error)) error
	BasketKey(sessionID string) string
}

// RedisRepository stores a session's basket as a JSON array under one key.
type RedisRepository struct {
	store KeyValueStore
	key   string
	ttl   time.Duration
}

// NewRedisRepository binds the slot for sessionID. A zero ttl never expires.
func NewRedisRepository(store KeyValueStore, sessionID string, ttl time.Duration) *RedisRepository {
	return &RedisRepository{store: store, key: store.BasketKey(sessionID), ttl: ttl}
}

// RedisFactory returns a RepositoryFactory backed by store.
func RedisFactory(store KeyValueStore, ttl time.Duration) RepositoryFactory {
	return func(sessionID string) Repository {
		return NewRedisRepository(store, sessionID, ttl)
	}
}

func (r *RedisRepository) Load(ctx context.Context) ([]LineItem, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, redis.Nil) {
		return []LineItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeItems([]byte(raw))
}

func (r *RedisRepository) Save(ctx context.Context, items []LineItem) error {
	payload, err := encodeItems(items)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key, string(payload), r.ttl)
}

func (r *RedisRepository) Update(ctx context.Context, fn UpdateFunc) ([]LineItem, error) {
	var next []LineItem
	err := r.store.Update(ctx, r.key, r.ttl, func(raw string, found bool) (string, error) {
		current := []LineItem{}
		if found {
			decoded, err := decodeItems([]byte(raw))
			if err != nil {
				return "", err
			}
			current = decoded
		}
		items, err := fn(current)
		if err != nil {
			return "", err
		}
		payload, err := encodeItems(items)
		if err != nil {
			return "", err
		}
		next = items
		return string(payload), nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}
