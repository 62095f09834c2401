/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-07 14:07:33
 * @LastEditTime: 2025-09-18 14:07:38
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"log/slog"
	"time"
)

// ViewFlusher 将缓存中累积的浏览量写回数据库
type ViewFlusher interface {
	Flush(ctx context.Context) (int, error)
}

// SyncViewCountsJob 负责将缓存中的浏览量同步到数据库。
type SyncViewCountsJob struct {
	views   ViewFlusher
	logger  *slog.Logger
	timeout time.Duration
}

// NewSyncViewCountsJob 是任务的构造函数。
func NewSyncViewCountsJob(views ViewFlusher, logger *slog.Logger) *SyncViewCountsJob {
	return &SyncViewCountsJob{views: views, logger: logger, timeout: 30 * time.Second}
}

// Name 方法返回任务的可读名称。
func (j *SyncViewCountsJob) Name() string {
	return "SyncPostViewCountsToDBJob"
}

// Run 是 cron.Job 接口要求实现的方法。
func (j *SyncViewCountsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	synced, err := j.views.Flush(ctx)
	if err != nil {
		// 已从缓存取出的增量在这里会丢失，只影响统计精度
		j.logger.Error("Failed to sync view counts", slog.String("job_name", j.Name()), slog.Any("error", err))
		return
	}
	if synced > 0 {
		j.logger.Info("View counts synced", slog.String("job_name", j.Name()), slog.Int("posts", synced))
	}
}
