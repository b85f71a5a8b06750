// Package cache is a two-tier cache: an in-process ristretto cache in front of an
// optional Redis. Values are stored as JSON.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"lorekeeper/internal/platform/logger"
)

const (
	DefaultTTL = 30 * time.Minute
	// DefaultLocalTTL bounds how long one process can serve a value another
	// process has already invalidated in redis.
	DefaultLocalTTL = 10 * time.Second
)

// Store is what services depend on.
type Store interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Options struct {
	TTL      time.Duration
	MaxBytes int64

	// LocalTTL is the memory tier TTL when redis is enabled. Without redis the
	// memory tier uses TTL.
	LocalTTL time.Duration

	// RedisAddr enables the second tier when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type TwoTier struct {
	mem    *ristretto.Cache[string, []byte]
	rdb    *redis.Client
	ttl    time.Duration
	memTTL time.Duration
	log    *logger.Logger
}

func New(opts Options, baseLog *logger.Logger) (*TwoTier, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 64 << 20
	}

	mem, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     opts.MaxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("memory cache: %w", err)
	}

	c := &TwoTier{mem: mem, ttl: opts.TTL, memTTL: opts.TTL, log: baseLog.With("service", "Cache")}
	if opts.RedisAddr != "" {
		c.rdb = redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		c.memTTL = opts.LocalTTL
		if c.memTTL <= 0 {
			c.memTTL = DefaultLocalTTL
		}
		if c.memTTL > c.ttl {
			c.memTTL = c.ttl
		}
	} else {
		c.log.Info("redis not configured, using memory cache only")
	}
	return c, nil
}

// Ping checks the redis tier, if any.
func (c *TwoTier) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Get loads key into dst. Redis failures are logged and reported as a miss.
func (c *TwoTier) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if raw, ok := c.mem.Get(key); ok {
		return true, json.Unmarshal(raw, dst)
	}
	if c.rdb == nil {
		return false, nil
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		c.log.Error("redis get failed", "key", key, "error", err)
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	c.mem.SetWithTTL(key, raw, int64(len(raw)), c.memTTL)
	c.mem.Wait()
	return true, nil
}

func (c *TwoTier) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mem.SetWithTTL(key, raw, int64(len(raw)), c.memTTL)
	c.mem.Wait()

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Error("redis set failed", "key", key, "error", err)
		}
	}
	return nil
}

func (c *TwoTier) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		c.mem.Del(k)
	}
	if c.rdb != nil && len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			c.log.Error("redis del failed", "keys", keys, "error", err)
		}
	}
	return nil
}

func (c *TwoTier) Close() error {
	c.mem.Close()
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
