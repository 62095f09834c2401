/*
 * @Description: 内存缓存服务实现（用于 Redis 不可用时的降级方案）
 * @Author: 安知鱼
 * @Date: 2025-10-05 00:00:00
 * @LastEditTime: 2025-10-05 20:45:43
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"
)

type cacheItem struct {
	value     string
	expiresAt time.Time
}

func (item cacheItem) expired(now time.Time) bool {
	return !item.expiresAt.IsZero() && now.After(item.expiresAt)
}

// memoryCacheService 是基于内存的缓存服务实现，单个互斥锁保证 Increment 与 GetAndDeleteMany 的原子性
type memoryCacheService struct {
	mu   sync.Mutex
	data map[string]cacheItem
	done chan struct{}
	once sync.Once
}

// NewMemoryCacheService 创建内存缓存服务实例并启动每分钟一次的过期清理
func NewMemoryCacheService() CacheService {
	svc := &memoryCacheService{
		data: make(map[string]cacheItem),
		done: make(chan struct{}),
	}
	go svc.cleanupLoop(time.Minute)
	return svc
}

func (s *memoryCacheService) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, item := range s.data {
				if item.expired(now) {
					delete(s.data, key)
				}
			}
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Stop 停止清理任务
func (s *memoryCacheService) Stop() {
	s.once.Do(func() { close(s.done) })
}

// load 调用方需持有锁
func (s *memoryCacheService) load(key string) (cacheItem, bool) {
	item, ok := s.data[key]
	if !ok {
		return cacheItem{}, false
	}
	if item.expired(time.Now()) {
		delete(s.data, key)
		return cacheItem{}, false
	}
	return item, true
}

func (s *memoryCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	item := cacheItem{value: fmt.Sprintf("%v", value)}
	if expiration > 0 {
		item.expiresAt = time.Now().Add(expiration)
	}
	s.mu.Lock()
	s.data[key] = item
	s.mu.Unlock()
	return nil
}

func (s *memoryCacheService) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.load(key)
	if !ok {
		return "", nil
	}
	return item.value, nil
}

func (s *memoryCacheService) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.data, key)
	}
	s.mu.Unlock()
	return nil
}

func (s *memoryCacheService) Increment(ctx context.Context, key string) (int64, error) {
	return s.IncrementBy(ctx, key, 1)
}

func (s *memoryCacheService) IncrementBy(ctx context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	item, ok := s.load(key)
	if ok {
		v, err := strconv.ParseInt(item.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("键 %s 的值不是整数", key)
		}
		current = v
	}
	item.value = strconv.FormatInt(current+delta, 10)
	s.data[key] = item
	return current + delta, nil
}

// Scan 与 Redis 一样支持 * 和 ? 通配符
func (s *memoryCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var keys []string
	for key, item := range s.data {
		if item.expired(now) {
			continue
		}
		matched, err := path.Match(pattern, key)
		if err != nil {
			return nil, fmt.Errorf("无效的匹配模式 %q: %w", pattern, err)
		}
		if matched {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *memoryCacheService) GetAndDeleteMany(ctx context.Context, keys []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make(map[string]int64, len(keys))
	for _, key := range keys {
		item, ok := s.load(key)
		delete(s.data, key)
		if !ok {
			continue
		}
		if v, err := strconv.ParseInt(item.value, 10, 64); err == nil {
			results[key] = v
		}
	}
	return results, nil
}
