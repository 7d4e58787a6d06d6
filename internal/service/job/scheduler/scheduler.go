// internal/service/job/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"campusmall/internal/pkg/logger"
	"campusmall/internal/service/job/application"
)

// SweepGuard 是按任务粒度的跨实例互斥入口
// 抢不到锁说明另一个实例正在执行同名任务，本轮直接跳过
type SweepGuard interface {
	TryLock() (bool, error)
	Unlock() error
}

// GuardFactory 为每个任务名创建一把互斥锁
type GuardFactory func(jobName string) (SweepGuard, error)

// Scheduler 按调度表驱动定时任务：每个条目一个独立的 ticker 循环
// 没有 cron 表达式解析，周期全部来自配置的 interval，足够覆盖当前任务集
type Scheduler struct {
	executor *application.Executor
	entries  []application.Entry
	guards   GuardFactory
}

func NewScheduler(executor *application.Executor, entries []application.Entry, guards GuardFactory) *Scheduler {
	return &Scheduler{
		executor: executor,
		entries:  entries,
		guards:   guards,
	}
}

// Run 启动所有调度循环并阻塞，直到 ctx 取消后所有循环退出
// 单个任务执行失败不终止调度，只有锁的创建失败才让 Run 返回错误
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, entry := range s.entries {
		entry := entry
		guard, err := s.guards(entry.Name)
		if err != nil {
			return err
		}
		g.Go(func() error {
			s.runLoop(ctx, entry, guard)
			return nil
		})
	}
	logger.Ctx(ctx).Info().Int("jobs", len(s.entries)).Msg("scheduler started")
	return g.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, entry application.Entry, guard SweepGuard) {
	interval := entry.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Ctx(ctx).Info().Str("job", entry.Name).Msg("scheduler loop stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, entry, guard)
		}
	}
}

// runOnce 抢锁成功才执行一轮，执行结果由 Executor 负责记录
func (s *Scheduler) runOnce(ctx context.Context, entry application.Entry, guard SweepGuard) {
	acquired, err := guard.TryLock()
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("job", entry.Name).Msg("failed to acquire sweep lock")
		return
	}
	if !acquired {
		logger.Ctx(ctx).Debug().Str("job", entry.Name).Msg("sweep lock held by another instance, skipping round")
		return
	}
	defer func() {
		if err := guard.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("job", entry.Name).Msg("failed to release sweep lock")
		}
	}()

	// 执行失败已由 Executor 记录审计与指标，这里不再重复处理
	_ = s.executor.Execute(ctx, entry.Name, entry.Group, entry.Params, entry.Fn)
}
