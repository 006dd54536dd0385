// Package store persists the pricing matrix as a single JSON document.
package store

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/pricematrix/pkg/config"
	"tableflip.dev/pricematrix/pkg/matrix"
)

var (
	// ErrNotFound is returned by Load when no document has been saved yet.
	ErrNotFound = errors.New("store: matrix document not found")
	// ErrMalformed wraps documents that cannot be decoded.
	ErrMalformed = errors.New("store: malformed matrix document")
)

// Persistence defines the persistence contract for the matrix document.
type Persistence interface {
	Load(ctx context.Context) (matrix.Matrix, error)
	Save(ctx context.Context, m matrix.Matrix) error
	Watch(ctx context.Context) (<-chan Event, error)
	Ping(ctx context.Context) error
	Close() error
}

// Config selects and locates a document store.
type Config interface {
	BasePath() string
	Backend() string
	RedisURL() string
}

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventMatrixChanged indicates the stored document was written.
	EventMatrixChanged EventType = iota
	// EventInvalidated signals a change that could not be classified; callers
	// should reload.
	EventInvalidated
)

// Event is emitted by Persistence.Watch when the stored document changes.
type Event struct {
	Type EventType
}

// Open returns the store selected by cfg. A nil cfg loads the config from the
// environment.
func Open(ctx context.Context, cfg Config) (Persistence, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	switch cfg.Backend() {
	case "", config.BackendDisk:
		return Load(cfg)
	case config.BackendRedis:
		return LoadRedis(ctx, cfg.RedisURL())
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend())
	}
}

func decode(data []byte) (matrix.Matrix, error) {
	m, err := matrix.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}
