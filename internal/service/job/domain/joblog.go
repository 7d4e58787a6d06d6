// internal/service/job/domain/joblog.go
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// 任务执行状态
const (
	JobStatusSuccess = 0
	JobStatusFailed  = 1
)

// JobLog 是一次定时任务执行的审计记录
// 每次调度产生一行，写入后不再更新
type JobLog struct {
	RunID       string // 本次执行的唯一标识
	JobName     string
	JobGroup    string
	Params      string
	StartTime   time.Time
	EndTime     time.Time
	ExecuteTime int64 // 耗时，毫秒
	Status      int   // 0 成功 / 1 失败
	Result      string
	Error       string
}

// NewJobLog 在任务开始时创建记录
func NewJobLog(jobName, jobGroup, params string, start time.Time) *JobLog {
	return &JobLog{
		RunID:     uuid.New().String(),
		JobName:   jobName,
		JobGroup:  jobGroup,
		Params:    params,
		StartTime: start,
	}
}

// Finish 填充结束信息
func (l *JobLog) Finish(end time.Time, result string, err error) {
	l.EndTime = end
	l.ExecuteTime = end.Sub(l.StartTime).Milliseconds()
	if err != nil {
		l.Status = JobStatusFailed
		l.Error = err.Error()
		return
	}
	l.Status = JobStatusSuccess
	l.Result = result
}

// JobLogRepository 任务日志的持久化接口
type JobLogRepository interface {
	Save(ctx context.Context, log *JobLog) error
}
