// Package redis holds the process-wide Redis connection used by the Redis
// snapshot store.
package redis

import (
	"sync"

	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	redisv9 "github.com/redis/go-redis/v9"
)

var (
	client *redisv9.Client
	once   sync.Once
)

// GetClient lazily dials the configured address on first use. The client is
// safe for concurrent use and is never closed.
func GetClient() *redisv9.Client {
	once.Do(func() {
		addr := config.GetRedisAddr()
		config.GetLogger().Debugw("Creating redis client", "addr", addr)
		client = redisv9.NewClient(&redisv9.Options{
			Addr: addr,
		})
	})
	return client
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	once = sync.Once{}
	client = nil
}
