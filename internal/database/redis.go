package database

import (
	"context"
	"fmt"

	"wedding-guest-list/config"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects the session store client and checks it with a ping.
func InitRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = cfg.ConnectTimeout
	}
	rdb := redis.NewClient(opts)

	err := ping(ctx, cfg.ConnectTimeout, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}
	return rdb, nil
}
