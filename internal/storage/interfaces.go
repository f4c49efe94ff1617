package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New(`key not found`)

// Storage is the durable key/value capability the stores persist through.
// Values are whole JSON documents; every Save overwrites the key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Expiring is implemented by backends that can drop a key on their own once
// its ttl has passed.
type Expiring interface {
	SaveWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const (
	KeyUsers      = `users`
	KeyProperties = `properties`
	KeyRequests   = `requests`
)

func SessionKey(sessionId string) string {
	return `currentUser:` + sessionId
}
