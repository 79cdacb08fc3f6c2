package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
)

// KeyPrefix namespaces every key the service writes.
const KeyPrefix = "feefox"

var (
	client *redis.Client
	ctx    = context.Background()
)

// Addr returns the configured cache address.
func Addr() string {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")
	return fmt.Sprintf("%s:%s", host, port)
}

// Key joins parts under the service namespace, e.g. feefox:dashboard:2024-03.
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}

// SetupCache initializes the connection to the Redis cache server
func SetupCache() {
	client = redis.NewClient(&redis.Options{
		Addr:     Addr(),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       env.GetEnvInt("CACHE_DB", 0),
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] Could not connect to Redis cache: %v", err)
	} else {
		log.Infof("[Cache] Successfully connected to Redis cache: %s", pong)
	}
}

// SetClient replaces the client, used by tests and the CLI.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// SetJSON stores v encoded as JSON.
func SetJSON(key string, v any, expiration time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return Set(key, data, expiration)
}

// GetJSON decodes a JSON value into v. A missing key returns redis.Nil.
func GetJSON(key string, v any) error {
	data, err := GetClient().Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}
