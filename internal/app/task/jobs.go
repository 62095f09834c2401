/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2025-07-31 10:03:36
 * @LastEditors: 安知鱼
 */
// internal/app/task/jobs.go
package task

// Job 是带名称的定时任务，与 cron.Job 接口兼容。
type Job interface {
	Run()
	Name() string
}

var _ Job = (*SyncViewCountsJob)(nil)
