package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/redis/go-redis/v9"
)

// Each entry is stored as a hash so the expiration settings travel with the
// data and the sliding window can be recomputed on every read.
const (
	fieldData     = "data"
	fieldAbsolute = "absexp" // unix seconds, 0 for none
	fieldSliding  = "sldexp" // seconds, 0 for none
)

// RedisStore is a Store backed by a shared Redis server, so that every
// instance of the service reads the same cached lists.
type RedisStore struct {
	client redis.Cmdable
	clock  clock.Clock
}

func NewRedisStore(client redis.Cmdable, clock clock.Clock) *RedisStore {
	return &RedisStore{
		client: client,
		clock:  clock,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	vals, err := s.client.HMGet(ctx, key, fieldData, fieldAbsolute, fieldSliding).Result()
	if err != nil {
		return "", fmt.Errorf("error reading %s from redis: %w", key, err)
	}
	if len(vals) != 3 || vals[0] == nil {
		return "", ErrNotFound
	}

	data, ok := vals[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected type %T for %s", vals[0], key)
	}

	var absolute time.Time
	if abs := parseSeconds(vals[1]); abs > 0 {
		absolute = time.Unix(abs, 0)
	}
	sliding := time.Duration(parseSeconds(vals[2])) * time.Second

	d, ok := ttl(s.clock.Now(), absolute, sliding)
	if !ok || sliding <= 0 {
		// Redis already enforces a fixed deadline on its own.
		return data, nil
	}
	if d <= 0 {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return "", fmt.Errorf("error removing expired %s: %w", key, err)
		}
		return "", ErrNotFound
	}

	if err := s.client.Expire(ctx, key, d).Err(); err != nil {
		return "", fmt.Errorf("error refreshing expiration of %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, opts EntryOptions) error {
	now := s.clock.Now()
	absolute := absoluteDeadline(now, opts)

	var absUnix int64
	if !absolute.IsZero() {
		absUnix = absolute.Unix()
	}
	sldSeconds := int64(opts.SlidingExpiration / time.Second)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldData, value, fieldAbsolute, absUnix, fieldSliding, sldSeconds)
		if d, ok := ttl(now, absolute, opts.SlidingExpiration); ok {
			pipe.Expire(ctx, key, d)
		} else {
			pipe.Persist(ctx, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error writing %s to redis: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("error removing %s from redis: %w", key, err)
	}
	return nil
}

func parseSeconds(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return i
}
