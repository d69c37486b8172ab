package dedup

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisSuppressor shares the duplicate window across replicas using SET NX
// with a TTL: the first writer claims the key, later writers see a miss.
type RedisSuppressor struct {
	client *redis.Client
}

func NewRedisSuppressor(client *redis.Client) *RedisSuppressor {
	return &RedisSuppressor{client: client}
}

// IsDuplicate fails open: if Redis is unreachable the alert is treated as
// fresh rather than dropped.
func (r *RedisSuppressor) IsDuplicate(ctx context.Context, asset, signal string) bool {
	if r.client == nil {
		return false
	}
	claimed, err := r.client.SetNX(ctx, "dedup:"+key(asset, signal), 1, Window).Result()
	if err != nil {
		log.Printf("Warning: dedup redis check failed: %v", err)
		return false
	}
	return !claimed
}
