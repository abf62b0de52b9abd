package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/rayshop/shopmap-backend/config"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

const activeMapTTL = 5 * time.Minute

func activeMapKey(slug string) string {
	return fmt.Sprintf("active-map:%s", slug)
}

// CacheActiveMap stores the serialized active-map response for a shop slug.
// The payload is whatever JSON the image map service produced; the cache is
// a pure read-through accelerator for the public storefront.
func CacheActiveMap(ctx context.Context, slug string, payload []byte) error {
	if client == nil {
		return nil
	}
	err := client.Set(ctx, activeMapKey(slug), payload, activeMapTTL).Err()
	if err != nil {
		logger.Error("Failed to cache active map", err, map[string]interface{}{
			"slug": slug,
		})
	}
	return err
}

// GetCachedActiveMap returns the cached active-map payload, or (nil, nil)
// on a cache miss.
func GetCachedActiveMap(ctx context.Context, slug string) ([]byte, error) {
	if client == nil {
		return nil, nil
	}
	val, err := client.Get(ctx, activeMapKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read cached active map", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}
	return val, nil
}

// InvalidateActiveMap drops the cached active map for a shop slug. Called
// after layout saves and activations so shoppers never see a stale layout
// longer than one request.
func InvalidateActiveMap(ctx context.Context, slug string) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, activeMapKey(slug)).Err()
}
