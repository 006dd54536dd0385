package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"tableflip.dev/pricematrix/pkg/matrix"
)

const (
	redisDocumentKey = "pricematrix:" + documentKey
	redisChannel     = "pricematrix:changes"
)

// redisPersistence keeps the document under a single key and announces every
// write on a pub/sub channel so other instances can reload.
type redisPersistence struct {
	rdb *goredis.Client
}

// LoadRedis creates a Persistence backed by Redis at redisURL
// (e.g. "redis://localhost:6379/0").
func LoadRedis(ctx context.Context, redisURL string) (Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}
	return &redisPersistence{rdb: rdb}, nil
}

func (r *redisPersistence) Load(ctx context.Context) (matrix.Matrix, error) {
	data, err := r.rdb.Get(ctx, redisDocumentKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: redis get: %w", err)
	}
	return decode(data)
}

func (r *redisPersistence) Save(ctx context.Context, m matrix.Matrix) error {
	data, err := matrix.Encode(m)
	if err != nil {
		return fmt.Errorf("store: encode matrix: %w", err)
	}
	if err := r.rdb.Set(ctx, redisDocumentKey, data, 0).Err(); err != nil {
		return fmt.Errorf("store: redis set: %w", err)
	}
	// The write already landed; a lost notification only delays other viewers.
	if err := r.rdb.Publish(ctx, redisChannel, documentKey).Err(); err != nil {
		slog.Warn("store: redis publish failed", "error", err)
	}
	return nil
}

func (r *redisPersistence) Watch(ctx context.Context) (<-chan Event, error) {
	sub := r.rdb.Subscribe(ctx, redisChannel)
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("store: redis subscribe: %w", err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case events <- Event{Type: EventMatrixChanged}:
				default:
				}
			}
		}
	}()
	return events, nil
}

func (r *redisPersistence) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *redisPersistence) Close() error {
	return r.rdb.Close()
}
