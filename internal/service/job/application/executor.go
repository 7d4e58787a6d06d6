// internal/service/job/application/executor.go
package application

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campusmall/internal/pkg/logger"
	"campusmall/internal/pkg/metrics"
	"campusmall/internal/service/job/domain"
)

// JobFunc 是一个定时任务的执行体，返回一段写入审计日志的结果摘要
type JobFunc func(ctx context.Context) (string, error)

// Executor 负责定时任务的统一执行：审计记录、panic 恢复、指标上报
// 任务本身做什么由 JobFunc 决定，Executor 只保证"每次执行都留痕"
type Executor struct {
	logRepo domain.JobLogRepository
	tracer  trace.Tracer
	now     func() time.Time
}

func NewExecutor(logRepo domain.JobLogRepository, tracer trace.Tracer) *Executor {
	return &Executor{
		logRepo: logRepo,
		tracer:  tracer,
		now:     time.Now,
	}
}

// Execute 执行一次任务并落库审计记录
// 审计记录写入失败只记日志，不影响任务本身的成败判定
func (e *Executor) Execute(ctx context.Context, name, group, params string, fn JobFunc) (err error) {
	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("job-%s", name))
	defer span.End()
	span.SetAttributes(
		attribute.String("job.name", name),
		attribute.String("job.group", group),
	)

	jobLog := domain.NewJobLog(name, group, params, e.now())
	log := logger.Ctx(ctx)
	log.Info().Str("job", name).Str("run_id", jobLog.RunID).Msg("job started")

	timer := metrics.JobExecuteSeconds.WithLabelValues(name)
	var result string

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		result, err = fn(ctx)
	}()

	end := e.now()
	jobLog.Finish(end, result, err)
	timer.Observe(end.Sub(jobLog.StartTime).Seconds())

	if err != nil {
		metrics.JobFailuresTotal.WithLabelValues(name).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).
			Str("job", name).
			Str("run_id", jobLog.RunID).
			Int64("execute_time_ms", jobLog.ExecuteTime).
			Msg("job failed")
	} else {
		log.Info().
			Str("job", name).
			Str("run_id", jobLog.RunID).
			Str("result", result).
			Int64("execute_time_ms", jobLog.ExecuteTime).
			Msg("job finished")
	}

	if saveErr := e.logRepo.Save(ctx, jobLog); saveErr != nil {
		log.Error().Err(saveErr).Str("job", name).Msg("failed to save job log")
	}
	return err
}
