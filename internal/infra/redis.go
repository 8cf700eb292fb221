package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// NewRedis connects the client that backs the planilla cache and the async
// job queues. Connectivity is verified before startup continues: the worker
// pool blocks on BRPOP and would otherwise spin silently against a dead
// address.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: URL invalida: %w", err)
	}

	// Cache reads plus queue pushes from a handful of handlers; a small pool
	// is enough for a single-clinic deployment.
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: sin conexion a %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
