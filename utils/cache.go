// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"luxstay/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient is the dedicated client for session persistence.
	SessionCacheClient *redis.Client
	sessionCacheMu     sync.Mutex
)

// InitSessionCache initializes the Redis client used by the redis session backend.
func InitSessionCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis (Session): %w", err)
	}
	SessionCacheClient = client
	return nil
}

// GetSessionCacheClient returns the Redis client for session persistence.
func GetSessionCacheClient() (*redis.Client, error) {
	sessionCacheMu.Lock()
	defer sessionCacheMu.Unlock()
	if SessionCacheClient == nil {
		if err := InitSessionCache(); err != nil {
			return nil, err
		}
	}
	return SessionCacheClient, nil
}
