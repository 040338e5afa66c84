// Package redis implements the storage abstraction on top of Redis, with
// a bit-exact key layout: documents as strings, the price-ordered
// multiset as a sorted set, and tag sets as Redis sets. It uses
// redis.UniversalClient directly. Documents and tag-set members are stored
// as the caller hands them; sorted-set members carry a sequence prefix
// (see encode) that reads strip again.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

// Store is a storage.Store backed by a Redis sorted-set/set/string store.
type Store struct {
	client redis.UniversalClient
}

// New wraps an existing Redis client. The caller owns the client's
// lifecycle (connection pool, TLS, auth) — this type only issues commands.
func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) DocPut(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Store) DocGet(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// membersKey is the companion hash mapping an original (caller-supplied)
// member to the sequence-prefixed member actually stored in the sorted
// set, so ZRem can find the exact entry to remove without the caller
// needing to know about the prefix.
func membersKey(bookKey string) string { return bookKey + ":members" }
func seqKey(bookKey string) string     { return bookKey + ":seq" }

// encode prepends a zero-padded, globally monotonic (per bookKey) sequence
// number to member, so that Redis's lexicographic tie-break among entries
// of equal score reflects insertion order — the FIFO-at-equal-price
// requirement. The sequence comes from Redis INCR, so it stays monotonic
// even across process restarts or multiple writers.
func encode(seq int64, member string) string {
	return fmt.Sprintf("%020d:%s", seq, member)
}

// decode strips the sequence prefix added by encode.
func decode(prefixed string) string {
	if len(prefixed) < 21 || prefixed[20] != ':' {
		return prefixed
	}
	return prefixed[21:]
}

func (s *Store) ZAdd(ctx context.Context, bookKey string, score float64, member string) error {
	seq, err := s.client.Incr(ctx, seqKey(bookKey)).Result()
	if err != nil {
		return err
	}
	prefixed := encode(seq, member)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, bookKey, redis.Z{Score: score, Member: prefixed})
	pipe.HSet(ctx, membersKey(bookKey), member, prefixed)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) ZRem(ctx context.Context, bookKey string, member string) error {
	prefixed, err := s.client.HGet(ctx, membersKey(bookKey), member).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, bookKey, prefixed)
	pipe.HDel(ctx, membersKey(bookKey), member)
	_, err = pipe.Exec(ctx)
	return err
}

// rawAscending fetches the full sorted set in ascending (score, member)
// order — the only order Redis is asked for. Descending order, when
// needed, is derived in Go rather than trusted to ZREVRANGE, because
// Redis reverses the member tie-break along with the score, which would
// silently violate FIFO at a price level.
func (s *Store) rawAscending(ctx context.Context, bookKey string) ([]storage.Entry, error) {
	zs, err := s.client.ZRangeWithScores(ctx, bookKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]storage.Entry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, storage.Entry{Score: z.Score, Member: decode(member)})
	}
	return entries, nil
}

func (s *Store) ZRangeAsc(ctx context.Context, bookKey string) ([]storage.Entry, error) {
	return s.rawAscending(ctx, bookKey)
}

func (s *Store) ZRangeDesc(ctx context.Context, bookKey string) ([]storage.Entry, error) {
	entries, err := s.rawAscending(ctx, bookKey)
	if err != nil {
		return nil, err
	}
	// Stable: entries tied on Score keep their ascending (insertion-order)
	// relative position even after this descending-by-score resort.
	storage.StableSortDescByScore(entries)
	return entries, nil
}

func (s *Store) SAdd(ctx context.Context, tagKey string, member string) error {
	return s.client.SAdd(ctx, tagKey, member).Err()
}

func (s *Store) SMembers(ctx context.Context, tagKey string) ([]string, error) {
	return s.client.SMembers(ctx, tagKey).Result()
}

func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

var _ storage.Store = (*Store)(nil)
