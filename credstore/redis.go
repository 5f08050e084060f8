package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a [Store] backed by a Redis hash, for panel deployments where operator
// sessions live in a shared state tier instead of the local machine. All keys for
// one panel instance share a single hash so ClearAll is one DEL.
type Redis struct {
	client  *redis.Client
	key     string
	timeout time.Duration
	log     zerolog.Logger
}

// NewRedis creates a Redis-backed store. The prefix isolates one panel instance's
// state; an empty prefix defaults to "nhadmin".
func NewRedis(client *redis.Client, prefix string, log zerolog.Logger) *Redis {
	if prefix == "" {
		prefix = "nhadmin"
	}
	return &Redis{
		client:  client,
		key:     prefix + ":credentials",
		timeout: 3 * time.Second,
		log:     log,
	}
}

// Get describes the get operation and its observable behavior.
func (r *Redis) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.HGet(ctx, r.key, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Str("key", key).Err(err).Msg("credstore: redis read failed, treating as absent")
		}
		return "", false
	}
	return v, true
}

// Set describes the set operation and its observable behavior.
func (r *Redis) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.HSet(ctx, r.key, key, value).Err(); err != nil {
		r.log.Warn().Str("key", key).Err(err).Msg("credstore: redis write failed")
	}
}

// Clear describes the clear operation and its observable behavior.
func (r *Redis) Clear(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.HDel(ctx, r.key, key).Err(); err != nil {
		r.log.Warn().Str("key", key).Err(err).Msg("credstore: redis delete failed")
	}
}

// ClearAll describes the clearall operation and its observable behavior.
func (r *Redis) ClearAll() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		r.log.Warn().Err(err).Msg("credstore: redis clear failed")
	}
}
