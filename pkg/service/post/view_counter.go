package post

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/repository"
	"github.com/anzhiyu-c/blog-admin/pkg/service/utility"
)

// 缓存键前缀常量
const (
	KeyNamespace        = "blog:"
	ViewCountKeyPrefix  = KeyNamespace + "post:view_count:"
	viewCountKeyPattern = ViewCountKeyPrefix + "*"
)

// ViewCounter 先把浏览量累积在缓存中，再由定时任务批量写回数据库
type ViewCounter struct {
	txManager repository.TransactionManager
	cacheSvc  utility.CacheService
}

func NewViewCounter(txManager repository.TransactionManager, cacheSvc utility.CacheService) *ViewCounter {
	return &ViewCounter{txManager: txManager, cacheSvc: cacheSvc}
}

func viewCacheKey(postID uint) string {
	return fmt.Sprintf("%s%d", ViewCountKeyPrefix, postID)
}

// Record 记录一次浏览，返回尚未落库的浏览量
func (v *ViewCounter) Record(ctx context.Context, postID uint) (int64, error) {
	return v.cacheSvc.Increment(ctx, viewCacheKey(postID))
}

// Flush 取出缓存中的全部增量并写回数据库，返回同步的文章数
func (v *ViewCounter) Flush(ctx context.Context) (int, error) {
	keys, err := v.cacheSvc.Scan(ctx, viewCountKeyPattern)
	if err != nil {
		return 0, fmt.Errorf("扫描浏览量缓存键失败: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	increments, err := v.cacheSvc.GetAndDeleteMany(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("读取浏览量缓存失败: %w", err)
	}

	updates := make(map[uint]int64, len(increments))
	for key, increment := range increments {
		raw := strings.TrimPrefix(key, ViewCountKeyPrefix)
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Printf("[ViewCounter] 忽略无法解析的缓存键 '%s'", key)
			continue
		}
		if increment > 0 {
			updates[uint(id)] += increment
		}
	}
	if len(updates) == 0 {
		return 0, nil
	}

	// 所有增量在同一事务中写入，失败时整体回滚并把增量放回缓存
	err = v.txManager.Do(ctx, func(repos repository.Repositories) error {
		return repos.Post.UpdateViewCounts(ctx, updates)
	})
	if err != nil {
		v.restore(ctx, updates)
		return 0, fmt.Errorf("批量更新浏览量失败: %w", err)
	}
	return len(updates), nil
}

func (v *ViewCounter) restore(ctx context.Context, updates map[uint]int64) {
	for id, delta := range updates {
		if _, err := v.cacheSvc.IncrementBy(ctx, viewCacheKey(id), delta); err != nil {
			log.Printf("[ViewCounter] 回写文章 %d 的浏览量增量 %d 失败: %v", id, delta, err)
		}
	}
}
