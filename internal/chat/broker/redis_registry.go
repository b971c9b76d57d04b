package broker

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "chat."

// RedisRegistry bridges local in-process registries across processes with
// Redis pub/sub. Local delivery also flows through Redis so every node,
// publisher included, observes the same payload stream.
type RedisRegistry struct {
	rdb   *redis.Client
	local *MemoryRegistry

	mu      sync.Mutex
	bridges map[string]*redis.PubSub
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{
		rdb:     rdb,
		local:   NewMemoryRegistry(),
		bridges: make(map[string]*redis.PubSub),
	}
}

func (r *RedisRegistry) Subscribe(groupID string, sub Subscriber) {
	r.local.Subscribe(groupID, sub)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bridges[groupID]; ok {
		return
	}

	pubsub := r.rdb.Subscribe(context.Background(), redisChannelPrefix+groupID)
	r.bridges[groupID] = pubsub

	go func() {
		for msg := range pubsub.Channel() {
			r.local.Publish(groupID, []byte(msg.Payload))
		}
	}()
}

func (r *RedisRegistry) Unsubscribe(groupID string, sub Subscriber) {
	r.local.Unsubscribe(groupID, sub)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.local.Size(groupID) > 0 {
		return
	}
	if pubsub, ok := r.bridges[groupID]; ok {
		delete(r.bridges, groupID)
		if err := pubsub.Close(); err != nil {
			log.Printf("close redis bridge for %s: %v", groupID, err)
		}
	}
}

func (r *RedisRegistry) Publish(groupID string, payload []byte) {
	if err := r.rdb.Publish(context.Background(), redisChannelPrefix+groupID, payload).Err(); err != nil {
		log.Printf("redis publish to %s failed, delivering locally: %v", groupID, err)
		r.local.Publish(groupID, payload)
	}
}
