// Package breaker wraps a storage.Store with a circuit breaker so that a
// degraded backing store fails fast with domain.ErrStoreUnavailable
// instead of letting every caller queue up on a timeout.
package breaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

// Store wraps a storage.Store with a gobreaker.CircuitBreaker. Once the
// breaker trips, every call returns domain.ErrStoreUnavailable without
// touching the underlying store until the breaker's timeout elapses.
type Store struct {
	next storage.Store
	cb   *gobreaker.CircuitBreaker
}

// New wraps next with a breaker named name. maxFailures consecutive
// failures trip the breaker.
func New(name string, next storage.Store, maxFailures uint32) *Store {
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &Store{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func run[T any](s *Store, fn func() (T, error)) (T, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, domain.ErrStoreUnavailable
		}
		return zero, errors.Join(domain.ErrStoreUnavailable, err)
	}
	return result.(T), nil
}

func (s *Store) DocPut(ctx context.Context, key string, value []byte) error {
	_, err := run(s, func() (struct{}, error) {
		return struct{}{}, s.next.DocPut(ctx, key, value)
	})
	return err
}

func (s *Store) DocGet(ctx context.Context, key string) ([]byte, bool, error) {
	type result struct {
		value []byte
		ok    bool
	}
	r, err := run(s, func() (result, error) {
		value, ok, err := s.next.DocGet(ctx, key)
		return result{value, ok}, err
	})
	return r.value, r.ok, err
}

func (s *Store) ZAdd(ctx context.Context, bookKey string, score float64, member string) error {
	_, err := run(s, func() (struct{}, error) {
		return struct{}{}, s.next.ZAdd(ctx, bookKey, score, member)
	})
	return err
}

func (s *Store) ZRangeAsc(ctx context.Context, bookKey string) ([]storage.Entry, error) {
	return run(s, func() ([]storage.Entry, error) {
		return s.next.ZRangeAsc(ctx, bookKey)
	})
}

func (s *Store) ZRangeDesc(ctx context.Context, bookKey string) ([]storage.Entry, error) {
	return run(s, func() ([]storage.Entry, error) {
		return s.next.ZRangeDesc(ctx, bookKey)
	})
}

func (s *Store) ZRem(ctx context.Context, bookKey string, member string) error {
	_, err := run(s, func() (struct{}, error) {
		return struct{}{}, s.next.ZRem(ctx, bookKey, member)
	})
	return err
}

func (s *Store) SAdd(ctx context.Context, tagKey string, member string) error {
	_, err := run(s, func() (struct{}, error) {
		return struct{}{}, s.next.SAdd(ctx, tagKey, member)
	})
	return err
}

func (s *Store) SMembers(ctx context.Context, tagKey string) ([]string, error) {
	return run(s, func() ([]string, error) {
		return s.next.SMembers(ctx, tagKey)
	})
}

func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	return run(s, func() ([]string, error) {
		return s.next.ScanPrefix(ctx, prefix)
	})
}

var _ storage.Store = (*Store)(nil)
