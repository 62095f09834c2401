/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2025-09-18 18:20:00
 * @LastEditors: 安知鱼
 */
package task

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
)

// 浏览量同步周期：每分钟的第 0 秒
const syncViewCountsSpec = "0 * * * * *"

// Scheduler 封装了 cron 实例和其依赖。
// 它是整个定时任务模块的核心协调者，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	views  ViewFlusher
}

// NewScheduler 是 Scheduler 的构造函数。
func NewScheduler(views ViewFlusher) *Scheduler {
	// 为 logger 添加一个固定的 "system":"cron" 属性
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		),
	)

	return &Scheduler{
		cron:   c,
		logger: logger,
		views:  views,
	}
}

// RegisterJobs 在调度器中注册所有定义好的定时任务。
func (s *Scheduler) RegisterJobs() error {
	s.logger.Info("Registering all periodic jobs...")

	syncJob := NewSyncViewCountsJob(s.views, s.logger)
	if _, err := s.cron.AddJob(syncViewCountsSpec, syncJob); err != nil {
		s.logger.Error("Failed to add job", slog.String("job_name", syncJob.Name()), slog.Any("error", err))
		return fmt.Errorf("注册定时任务 '%s' 失败: %w", syncJob.Name(), err)
	}
	s.logger.Info("-> Successfully registered job", "job_name", syncJob.Name(), "schedule", "every minute")

	s.logger.Info("All periodic jobs registered.")
	return nil
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 等待正在执行的任务结束后停止调度器。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
