package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/robfig/cron/v3"
)

type fakeFlusher struct {
	calls  int
	synced int
	err    error
}

func (f *fakeFlusher) Flush(ctx context.Context) (int, error) {
	f.calls++
	return f.synced, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncViewCountsJob(t *testing.T) {
	tests := []struct {
		name    string
		flusher *fakeFlusher
	}{
		{name: "同步成功", flusher: &fakeFlusher{synced: 3}},
		{name: "没有待同步的数据", flusher: &fakeFlusher{}},
		{name: "同步失败不会 panic", flusher: &fakeFlusher{err: errors.New("db down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NewSyncViewCountsJob(tt.flusher, discardLogger()).Run()
			if tt.flusher.calls != 1 {
				t.Errorf("Flush 调用次数 = %d, want 1", tt.flusher.calls)
			}
		})
	}
}

type namedJob struct{}

func (namedJob) Run()         { panic("boom") }
func (namedJob) Name() string { return "Named" }

type plainJob struct{ ran bool }

func (p *plainJob) Run() { p.ran = true }

func TestWrappers(t *testing.T) {
	logger := discardLogger()

	// panic 被捕获，不会传播到调用方
	cron.NewChain(NewPanicRecoveryWrapper(logger), NewLoggingWrapper(logger)).Then(namedJob{}).Run()

	p := &plainJob{}
	cron.NewChain(NewLoggingWrapper(logger)).Then(p).Run()
	if !p.ran {
		t.Error("被装饰的任务没有执行")
	}

	if got := jobName(namedJob{}); got != "Named" {
		t.Errorf("jobName() = %s", got)
	}
	if got := jobName(p); got != "task.plainJob" {
		t.Errorf("jobName() = %s", got)
	}
}

func TestScheduler_RegisterJobs(t *testing.T) {
	s := NewScheduler(&fakeFlusher{})
	if err := s.RegisterJobs(); err != nil {
		t.Fatalf("RegisterJobs() error = %v", err)
	}
	if n := len(s.cron.Entries()); n != 1 {
		t.Errorf("注册的任务数 = %d, want 1", n)
	}
	s.Start()
	s.Stop()
}
