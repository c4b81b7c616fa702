package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/platform/obs"
	"tour-planner-service/internal/ports"
)

// RedisPathCache keeps one hash per (network, revision, origin); fields are destination
// ids and values are JSON-encoded paths. Each write refreshes the TTL of the hash.
type RedisPathCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPathCache(rdb *redis.Client, ttl time.Duration) *RedisPathCache {
	return &RedisPathCache{rdb: rdb, ttl: ttl}
}

// NewRedisPathCacheFromURL connects using a redis:// URL.
func NewRedisPathCacheFromURL(url string, ttl time.Duration) (*RedisPathCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis path cache: parse url: %w", err)
	}
	return NewRedisPathCache(redis.NewClient(opt), ttl), nil
}

func (c *RedisPathCache) key(scope ports.PathScope, origin string) string {
	return "paths:" + scope.NetworkID + ":" + scope.Revision + ":" + origin
}

func (c *RedisPathCache) GetPaths(
	ctx context.Context,
	scope ports.PathScope,
	origin string,
	destinations []string,
) (_ map[string]domain.Path, err error) {
	defer obs.Time(ctx, "path.cache.redis.GetPaths")(&err)

	if c.rdb == nil {
		return nil, errors.New("redis path cache: client is nil")
	}
	if origin == "" {
		return nil, errors.New("get path cache: origin must not be empty")
	}

	uniq := uniqueIDs(destinations)
	if len(uniq) == 0 {
		return map[string]domain.Path{}, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.key(scope, origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get path cache: hmget: %w", err)
	}

	out := make(map[string]domain.Path, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decodePath(origin, uniq[i], []byte(s))
		if err != nil {
			return nil, fmt.Errorf("get path cache: decode %q->%q: %w", origin, uniq[i], err)
		}
		out[uniq[i]] = p
	}
	return out, nil
}

func (c *RedisPathCache) SetPaths(
	ctx context.Context,
	scope ports.PathScope,
	origin string,
	paths map[string]domain.Path,
) error {
	if c.rdb == nil {
		return errors.New("redis path cache: client is nil")
	}
	if origin == "" {
		return errors.New("insert path cache: origin must not be empty")
	}
	if len(paths) == 0 {
		return nil
	}

	fields := make([]any, 0, 2*len(paths))
	for dest, p := range paths {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert path cache: empty destination key")
		}
		data, err := encodePath(p)
		if err != nil {
			return fmt.Errorf("insert path cache dest=%q: encode: %w", dest, err)
		}
		fields = append(fields, dest, string(data))
	}

	key := c.key(scope, origin)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields...)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert path cache: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisPathCache) Close() error {
	return c.rdb.Close()
}
