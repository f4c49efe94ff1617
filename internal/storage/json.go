package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// LoadCollection reads the JSON array stored under key. A missing key is an
// empty collection.
func LoadCollection[T any](ctx context.Context, s Storage, key string) ([]T, error) {
	data, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf(`load %s: %w`, key, err)
	}

	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf(`decode %s: %w`, key, err)
	}

	return items, nil
}

func SaveCollection[T any](ctx context.Context, s Storage, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf(`encode %s: %w`, key, err)
	}
	if err := s.Save(ctx, key, data); err != nil {
		return fmt.Errorf(`save %s: %w`, key, err)
	}
	return nil
}

func LoadObject[T any](ctx context.Context, s Storage, key string) (T, error) {
	var value T
	data, err := s.Load(ctx, key)
	if err != nil {
		return value, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf(`decode %s: %w`, key, err)
	}
	return value, nil
}

func SaveObject[T any](ctx context.Context, s Storage, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf(`encode %s: %w`, key, err)
	}
	if err := s.Save(ctx, key, data); err != nil {
		return fmt.Errorf(`save %s: %w`, key, err)
	}
	return nil
}

// SaveObjectTTL is SaveObject for short-lived values. Backends that implement
// Expiring drop the key after ttl; the others keep it until it is deleted.
func SaveObjectTTL[T any](ctx context.Context, s Storage, key string, value T, ttl time.Duration) error {
	expiring, ok := s.(Expiring)
	if !ok || ttl <= 0 {
		return SaveObject(ctx, s, key, value)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf(`encode %s: %w`, key, err)
	}
	if err := expiring.SaveWithTTL(ctx, key, data, ttl); err != nil {
		return fmt.Errorf(`save %s: %w`, key, err)
	}
	return nil
}
