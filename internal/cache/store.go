package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store keeps serialized values by key. Carts are stored under the session
// token, so any implementation can back the cart service.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrCacheMiss is returned by Get when the key holds no value.
var ErrCacheMiss = errors.New("cache miss")

// GetJSON obtiene y deserializa un valor. found es false si la clave no existe.
func GetJSON(ctx context.Context, s Store, key string, target any) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// PutJSON serializa y guarda un valor.
func PutJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}
