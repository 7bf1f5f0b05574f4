// Package cache memoizes resolved chatbot answers in redis. Cache
// trouble is never allowed to fail a query: errors are logged and
// treated as a miss.
package cache

import (
	"aquanqa/aquanqa/utils/logging"
	"aquanqa/aquanqa/utils/textutil"
	"aquanqa/aquanqa/utils/types"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	Prefix         = "chatbot"
	queryNamespace = Prefix + ":query:"
)

// QueryKey hashes the canonical form of a question so whitespace, case,
// punctuation and accent variants share one cache entry.
func QueryKey(question string) string {
	sum := md5.Sum([]byte(textutil.Canonical(question)))
	return queryNamespace + hex.EncodeToString(sum[:])
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// GetResult returns the memoized resolution for a question, or miss.
func (c *Cache) GetResult(ctx context.Context, question string) (*types.ChatbotResult, bool) {
	var result types.ChatbotResult
	if !c.getJSON(ctx, QueryKey(question), &result) {
		return nil, false
	}
	return &result, true
}

// SetResult memoizes a resolution under the question's canonical key.
func (c *Cache) SetResult(ctx context.Context, question string, result *types.ChatbotResult) {
	c.SetJSON(ctx, QueryKey(question), result, c.ttl)
}

// GetJSON reads an arbitrary cached JSON value; false on miss or error.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	return c.getJSON(ctx, key, v)
}

func (c *Cache) getJSON(ctx context.Context, key string, v interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logging.AppLogger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		logging.AppLogger.Warn("cache payload corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON writes an arbitrary JSON value with its own TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		logging.AppLogger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		logging.AppLogger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete drops a single key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		logging.AppLogger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateQueries drops every memoized resolution. Called on any
// knowledge mutation: correctness over cache efficiency.
func (c *Cache) InvalidateQueries(ctx context.Context) error {
	return c.InvalidateNamespace(ctx, queryNamespace)
}

// InvalidateNamespace deletes all keys under a prefix via SCAN, redis
// has no delete-by-pattern primitive.
func (c *Cache) InvalidateNamespace(ctx context.Context, prefix string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		logging.AppLogger.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
		return err
	}
	if len(keys) > 0 {
		return c.rdb.Del(ctx, keys...).Err()
	}
	return nil
}
