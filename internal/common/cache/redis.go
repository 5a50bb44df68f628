// internal/common/cache/redis.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"answer-bot/internal/common/config"
	apperrors "answer-bot/internal/common/errors"
)

const defaultPrefix = "answer"

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// Ping tests the Redis connection
func Ping(ctx context.Context, client redis.Cmdable) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// AnswerCache stores resolved answers keyed by strategy and utterance.
// Only answers the backend actually produced belong here; callers must not
// store fallbacks or diagnostics.
type AnswerCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewAnswerCache(client redis.Cmdable, ttl time.Duration, prefix string) *AnswerCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &AnswerCache{client: client, ttl: ttl, prefix: prefix}
}

// FromConfig builds an AnswerCache using the cache section of cfg. The
// language project, deployment and language are folded into the prefix so
// entries written against another knowledge base are never served.
func FromConfig(client redis.Cmdable, cfg *config.Config) *AnswerCache {
	prefix := cfg.Cache.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	prefix = strings.Join([]string{
		prefix,
		cfg.Language.ProjectName,
		cfg.Language.DeploymentName,
		cfg.Language.Language,
	}, ":")
	return NewAnswerCache(client, time.Duration(cfg.Cache.TTL)*time.Millisecond, prefix)
}

// Key returns "<prefix>:<strategy>:<sha256(utterance)>". The utterance is
// hashed as-is; "Hi" and "hi" are different entries.
func (c *AnswerCache) Key(strategy, utterance string) string {
	sum := sha256.Sum256([]byte(utterance))
	return strings.Join([]string{c.prefix, strategy, hex.EncodeToString(sum[:])}, ":")
}

// Get returns the cached answer. A miss is (""; false; nil). Redis failures
// are CACHE_UNAVAILABLE errors.
func (c *AnswerCache) Get(ctx context.Context, strategy, utterance string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.Key(strategy, utterance)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewCacheUnavailableError(err)
	}
	return val, true, nil
}

// Set stores answer with the cache TTL. Empty answers are ignored.
func (c *AnswerCache) Set(ctx context.Context, strategy, utterance, answer string) error {
	if answer == "" {
		return nil
	}
	if err := c.client.Set(ctx, c.Key(strategy, utterance), answer, c.ttl).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}

// TTL returns the expiration applied to new entries.
func (c *AnswerCache) TTL() time.Duration {
	return c.ttl
}
