package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is a flat key-value store holding whole JSON documents.
// Callers read a document, mutate it in memory and write it back whole;
// there is no partial update and the last Put for a key wins.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Well-known document keys. The file backend maps them to
// <data dir>/<key>.json.
const (
	KeyUserContext    = "user_context"
	KeySubscriptions  = "subscriptions"
	KeyEventInterests = "event_interests"
)
