package caches

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheItem 缓存项
type cacheItem[T any] struct {
	value     T
	expiredAt time.Time
}

// isExpired 检查是否过期
func (item *cacheItem[T]) isExpired() bool {
	return !item.expiredAt.IsZero() && time.Now().After(item.expiredAt)
}

// LocalCache 本地缓存实现
// 带 loadFunc 时 Get 为穿透加载，singleflight 保证同一 key 并发只加载一次
type LocalCache[T any] struct {
	data     sync.Map
	loadFunc LoadFunc[T] // 只读字段，创建后不可修改
	ttl      time.Duration
	stopChan chan struct{}
	once     sync.Once
	sf       singleflight.Group
}

// NewLocalCache 创建本地缓存实例
func NewLocalCache[T any](loadFunc LoadFunc[T], ttl time.Duration) *LocalCache[T] {
	cache := &LocalCache[T]{
		loadFunc: loadFunc,
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	cache.startCleanup()
	return cache
}

// NewLocalCacheWithoutLoader 创建无回调函数的本地缓存实例
func NewLocalCacheWithoutLoader[T any](ttl time.Duration) *LocalCache[T] {
	return NewLocalCache[T](nil, ttl)
}

// Get 获取缓存
// 参数:
//   - ctx: context.Context 上下文
//   - key: string 缓存键
//
// 返回:
//   - T 缓存值
//   - error 错误信息
func (l *LocalCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	if value, exists := l.data.Load(key); exists {
		item := value.(*cacheItem[T])
		if !item.isExpired() {
			return item.value, nil
		}
		l.data.Delete(key)
	}

	if l.loadFunc == nil {
		return zero, fmt.Errorf("key not found: %s", key)
	}

	// 单飞机制防止并发重复加载
	result, err, _ := l.sf.Do(key, func() (interface{}, error) {
		// 等待期间可能已被其他协程加载
		if value, exists := l.data.Load(key); exists {
			item := value.(*cacheItem[T])
			if !item.isExpired() {
				return item.value, nil
			}
			l.data.Delete(key)
		}

		value, err := l.loadFunc(ctx, key)
		if err != nil {
			return zero, fmt.Errorf("failed to load data: %w", err)
		}

		if err := l.Set(ctx, key, value); err != nil {
			return zero, fmt.Errorf("failed to cache loaded data: %w", err)
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	if typedResult, ok := result.(T); ok {
		return typedResult, nil
	}
	return zero, fmt.Errorf("type assertion failed for key: %s", key)
}

// Set 设置缓存
func (l *LocalCache[T]) Set(ctx context.Context, key string, value T) error {
	var expiredAt time.Time
	if l.ttl > 0 {
		expiredAt = time.Now().Add(l.ttl)
	}
	l.data.Store(key, &cacheItem[T]{value: value, expiredAt: expiredAt})
	return nil
}

// Delete 删除键
func (l *LocalCache[T]) Delete(ctx context.Context, key string) error {
	l.data.Delete(key)
	return nil
}

// Clean 清除所有缓存
func (l *LocalCache[T]) Clean(ctx context.Context) error {
	l.data.Range(func(key, value interface{}) bool {
		l.data.Delete(key)
		return true
	})
	return nil
}

// Exists 检查键是否存在
func (l *LocalCache[T]) Exists(ctx context.Context, key string) (bool, error) {
	if value, exists := l.data.Load(key); exists {
		item := value.(*cacheItem[T])
		if !item.isExpired() {
			return true, nil
		}
		l.data.Delete(key)
	}
	return false, nil
}

// startCleanup 启动清理协程
func (l *LocalCache[T]) startCleanup() {
	go func() {
		ticker := time.NewTicker(time.Minute * 5) // 每5分钟清理一次
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.cleanup()
			case <-l.stopChan:
				return
			}
		}
	}()
}

// cleanup 清理过期项
func (l *LocalCache[T]) cleanup() {
	l.data.Range(func(key, value interface{}) bool {
		item := value.(*cacheItem[T])
		if item.isExpired() {
			l.data.Delete(key)
		}
		return true
	})
}

// Close 关闭缓存
func (l *LocalCache[T]) Close() error {
	l.once.Do(func() {
		close(l.stopChan)
	})
	return nil
}
