/*
 * @Description: Redis 缓存服务
 * @Author: 安知鱼
 * @Date: 2025-06-20 15:17:47
 * @LastEditTime: 2025-09-17 09:48:30
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService 定义了缓存服务的接口。Get 在键不存在时返回空字符串和 nil 错误。
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	// Increment 原子地增加一个键的值
	Increment(ctx context.Context, key string) (int64, error)
	// IncrementBy 原子地把一个键的值增加 delta
	IncrementBy(ctx context.Context, key string, delta int64) (int64, error)
	// Scan 查找匹配 glob 模式的键
	Scan(ctx context.Context, pattern string) ([]string, error)
	// GetAndDeleteMany 读取多个计数键的值并删除它们
	GetAndDeleteMany(ctx context.Context, keys []string) (map[string]int64, error)
}

// redisCacheService 是 CacheService 的 Redis 实现
type redisCacheService struct {
	client *redis.Client
}

// NewCacheService 通过依赖注入接收 Redis 客户端
func NewCacheService(client *redis.Client) CacheService {
	return &redisCacheService{
		client: client,
	}
}

func (s *redisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *redisCacheService) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *redisCacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *redisCacheService) Increment(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *redisCacheService) IncrementBy(ctx context.Context, key string, delta int64) (int64, error) {
	return s.client.IncrBy(ctx, key, delta).Result()
}

// Scan 使用 SCAN 命令遍历所有匹配的键，避免在生产环境中使用 KEYS 命令。
func (s *redisCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	var allKeys []string
	var cursor uint64
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		allKeys = append(allKeys, keys...)
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}
	return allKeys, nil
}

// GetAndDeleteMany 在同一个 MULTI/EXEC 事务中执行 GET 与 DEL，读取和清零之间不会丢失增量。
func (s *redisCacheService) GetAndDeleteMany(ctx context.Context, keys []string) (map[string]int64, error) {
	results := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return results, nil
	}

	cmds := make(map[string]*redis.StringCmd, len(keys))
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			cmds[key] = pipe.Get(ctx, key)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	for key, cmd := range cmds {
		valStr, err := cmd.Result()
		if err != nil {
			continue
		}
		val, convErr := strconv.ParseInt(valStr, 10, 64)
		if convErr != nil {
			log.Printf("警告: 无法将 Redis 值 '%s' (key: %s) 转换为整数: %v", valStr, key, convErr)
			continue
		}
		results[key] = val
	}
	return results, nil
}
