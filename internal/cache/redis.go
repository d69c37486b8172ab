package cache

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Client is the shared Redis client, nil when Redis is not configured.
// Duplicate suppression falls back to process memory in that case.
var Client *redis.Client

// InitRedis connects the shared client. The address comes from config; an
// empty address is a supported mode, a bad one is fatal.
func InitRedis(ctx context.Context, addr string) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Println("Warning: REDIS_URL not set, duplicate suppression falls back to memory")
		return
	}
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := Client.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")
}
