package keyvalredis

import (
	"context"
	"errors"
	"time"

	"github.com/hayat-market/authgate/pkg/keyval"
	"github.com/redis/go-redis/v9"
)

// Store implements keyval.Store backed by Redis.
//
// Each operation runs under its own deadline and transient failures are
// retried a bounded number of times here, at the adapter level only, so the
// business flows above never re-run side-effecting logic.
type Store struct {
	rdb        *redis.Client
	opTimeout  time.Duration
	maxRetries int
}

// Options tunes the adapter. Zero values fall back to sane defaults.
type Options struct {
	OpTimeout  time.Duration
	MaxRetries int
}

// NewStore creates a Redis-backed store.
func NewStore(rdb *redis.Client, opts Options) *Store {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 3 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Store{rdb: rdb, opTimeout: opts.OpTimeout, maxRetries: opts.MaxRetries}
}

// Set writes value under key with the given TTL.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.retry(ctx, func(ctx context.Context) error {
		return s.rdb.Set(ctx, key, value, ttl).Err()
	})
}

// SetNX writes only when the key is absent.
func (s *Store) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	var set bool
	err := s.retry(ctx, func(ctx context.Context) error {
		res, err := s.rdb.SetNX(ctx, key, value, ttl).Result()
		if err != nil {
			return err
		}
		set = res
		return nil
	})
	return set, err
}

// Get returns the value and whether the key exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var found bool
	err := s.retry(ctx, func(ctx context.Context) error {
		res, err := s.rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		value, found = res, true
		return nil
	})
	return value, found, err
}

// GetDel atomically reads and removes the key via Redis GETDEL.
//
// No retry here: a retried GETDEL after an ambiguous failure could consume a
// second value. One-shot keeps the at-most-once guarantee.
func (s *Store) GetDel(ctx context.Context, key string) (string, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	res, err := s.rdb.GetDel(opCtx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, keyval.ErrStoreUnavailable(err).WithDetail("op", "getdel")
	}
	return res, true, nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.retry(ctx, func(ctx context.Context) error {
		return s.rdb.Del(ctx, key).Err()
	})
}

// Scan returns all keys matching prefix using the SCAN cursor.
func (s *Store) Scan(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.retry(ctx, func(ctx context.Context) error {
		keys = keys[:0]
		iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		return iter.Err()
	})
	return keys, err
}

func (s *Store) retry(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
		err := op(opCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return keyval.ErrStoreUnavailable(lastErr)
}
