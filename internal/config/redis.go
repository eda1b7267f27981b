package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and pings it. It returns nil when the
// server is unreachable; callers run without rate limiting in that case.
func NewRedisClient(cfg Redis) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable at %s, rate limiting disabled: %v", cfg.Addr, err)
		_ = client.Close()
		return nil
	}

	log.Printf("connected to redis at %s", cfg.Addr)
	return client
}
