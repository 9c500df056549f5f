package caches

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache Redis缓存实现
// 多进程部署时用于共享会话密钥和票据
type RedisCache[T any] struct {
	client redis.UniversalClient
	prefix string        // 前缀
	ttl    time.Duration // 过期时间
}

// NewRedisCache 创建新的Redis缓存实例
func NewRedisCache[T any](client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// NewRedisCacheWithOptions 使用选项创建Redis缓存实例
func NewRedisCacheWithOptions[T any](options *redis.Options, prefix string, ttl time.Duration) *RedisCache[T] {
	return NewRedisCache[T](redis.NewClient(options), prefix, ttl)
}

// getKey 获取带前缀的键名
func (r *RedisCache[T]) getKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Get 获取缓存
func (r *RedisCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	result, err := r.client.Get(ctx, r.getKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return zero, fmt.Errorf("key not found: %s", key)
		}
		return zero, fmt.Errorf("failed to get cache: %w", err)
	}

	var value T
	if err := json.Unmarshal([]byte(result), &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return value, nil
}

// Set 设置缓存
func (r *RedisCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	// ttl 为 0 或负数时 redis 不设置过期时间
	if err := r.client.Set(ctx, r.getKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 删除键
func (r *RedisCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.getKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Clean 清除所有缓存
func (r *RedisCache[T]) Clean(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.getKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return nil
}
