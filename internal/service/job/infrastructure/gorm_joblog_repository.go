// internal/service/job/infrastructure/gorm_joblog_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"campusmall/internal/service/job/domain"
)

// JobLogModel 是任务日志表的 GORM 模型
type JobLogModel struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	RunID       string    `gorm:"column:run_id;type:varchar(36);uniqueIndex;not null"`
	JobName     string    `gorm:"column:job_name;type:varchar(64);not null;index"`
	JobGroup    string    `gorm:"column:job_group;type:varchar(64);not null"`
	Params      string    `gorm:"column:params;type:varchar(255)"`
	StartTime   time.Time `gorm:"column:start_time;not null"`
	EndTime     time.Time `gorm:"column:end_time;not null"`
	ExecuteTime int64     `gorm:"column:execute_time;not null"`
	Status      int       `gorm:"column:status;not null"`
	Result      string    `gorm:"column:result;type:varchar(500)"`
	Error       string    `gorm:"column:error;type:varchar(2000)"`
}

func (JobLogModel) TableName() string {
	return "t_job_log"
}

// GormJobLogRepository 是 domain.JobLogRepository 的 GORM 实现
type GormJobLogRepository struct {
	db *gorm.DB
}

func NewGormJobLogRepository(db *gorm.DB) *GormJobLogRepository {
	return &GormJobLogRepository{db: db}
}

var _ domain.JobLogRepository = (*GormJobLogRepository)(nil)

func (r *GormJobLogRepository) Save(ctx context.Context, log *domain.JobLog) error {
	model := &JobLogModel{
		RunID:       log.RunID,
		JobName:     log.JobName,
		JobGroup:    log.JobGroup,
		Params:      log.Params,
		StartTime:   log.StartTime,
		EndTime:     log.EndTime,
		ExecuteTime: log.ExecuteTime,
		Status:      log.Status,
		Result:      log.Result,
		Error:       log.Error,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrapf(err, "failed to save job log for %s", log.JobName)
	}
	return nil
}

// OpenMysql 建立 GORM 连接并迁移任务日志表
func OpenMysql(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mysql")
	}
	if err := db.AutoMigrate(&JobLogModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate job log table")
	}
	return db, nil
}
