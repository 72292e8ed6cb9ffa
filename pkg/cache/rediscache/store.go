package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// Store shares builder cache entries (preview snapshots, documents) through
// Redis so several processes see the same published preview.
type Store struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

var _ builder.CacheStore = (*Store)(nil)

// Options configures the store.
type Options struct {
	TTL    time.Duration
	Prefix string
}

// Dial connects to the Redis URL (redis://host:port/db) and pings it.
func Dial(ctx context.Context, url string, opts Options) (*Store, error) {
	if url == "" {
		return nil, errors.New("rediscache: url is required")
	}
	parsed, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("rediscache: parse url: %w", err)
	}
	if parsed.DialTimeout == 0 {
		parsed.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(parsed)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("rediscache: ping: %w", err)
	}
	return New(rdb, opts), nil
}

// New wraps an existing client.
func New(rdb goredis.UniversalClient, opts Options) *Store {
	return &Store{rdb: rdb, ttl: opts.TTL, prefix: opts.Prefix}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Get returns the stored value.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rediscache: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores the value with the configured TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("rediscache: set %s: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("rediscache: delete %s: %w", key, err)
	}
	return nil
}
