// internal/service/job/application/registry.go
package application

import (
	"context"
	"fmt"
	"time"

	"campusmall/internal/pkg/config"
	"campusmall/internal/pkg/logger"
)

// 内置任务名，与调度配置 jobs[].name 对应
const (
	JobCancelTimeoutOrders  = "cancelTimeoutOrders"
	JobConfirmTimeoutOrders = "confirmTimeoutOrders"
	JobReleaseTimeoutLocker = "releaseTimeoutLockers"
	JobCheckStockWarning    = "checkStockWarning"
	JobCleanSystemLogs      = "cleanSystemLogs"
	JobExecuteStatistics    = "executeStatistics"
)

// OrderJobClient 订单服务侧的对账触发入口
type OrderJobClient interface {
	CancelTimeoutOrders(ctx context.Context, minutes int) int
	ConfirmTimeoutOrders(ctx context.Context, days int) int
	ReleaseTimeoutLockers(ctx context.Context, hours int) int
}

// ProductJobClient 商品服务侧的巡检入口
type ProductJobClient interface {
	CheckStockWarning(ctx context.Context, threshold int) int
}

// SystemJobClient 系统服务侧的维护入口
type SystemJobClient interface {
	CleanSystemLogs(ctx context.Context, retentionDays int) int
	ExecuteStatistics(ctx context.Context, date string) bool
}

// Entry 是调度表中的一项：任务定义加上它的执行周期
type Entry struct {
	Name     string
	Group    string
	Params   string
	Interval time.Duration
	Fn       JobFunc
}

// Registry 把配置里的任务名解析成可执行的 JobFunc
// 阈值参数在每次执行时从当前配置读取，配置热更新后下一轮自动生效
type Registry struct {
	order   OrderJobClient
	product ProductJobClient
	system  SystemJobClient
}

func NewRegistry(order OrderJobClient, product ProductJobClient, system SystemJobClient) *Registry {
	return &Registry{order: order, product: product, system: system}
}

// Resolve 按任务名返回执行体，未知任务名返回 false
func (r *Registry) Resolve(name string) (JobFunc, bool) {
	switch name {
	case JobCancelTimeoutOrders:
		return func(ctx context.Context) (string, error) {
			minutes := config.GetCurrentConfig().Order.PaymentTimeoutMinutes
			count := r.order.CancelTimeoutOrders(ctx, minutes)
			return fmt.Sprintf("cancelled=%d", count), nil
		}, true
	case JobConfirmTimeoutOrders:
		return func(ctx context.Context) (string, error) {
			days := config.GetCurrentConfig().Order.AutoConfirmDays
			count := r.order.ConfirmTimeoutOrders(ctx, days)
			return fmt.Sprintf("confirmed=%d", count), nil
		}, true
	case JobReleaseTimeoutLocker:
		return func(ctx context.Context) (string, error) {
			hours := config.GetCurrentConfig().Order.LockerTimeoutHours
			count := r.order.ReleaseTimeoutLockers(ctx, hours)
			return fmt.Sprintf("released=%d", count), nil
		}, true
	case JobCheckStockWarning:
		return func(ctx context.Context) (string, error) {
			threshold := config.GetCurrentConfig().Order.StockWarningThreshold
			count := r.product.CheckStockWarning(ctx, threshold)
			return fmt.Sprintf("warnings=%d", count), nil
		}, true
	case JobCleanSystemLogs:
		return func(ctx context.Context) (string, error) {
			days := config.GetCurrentConfig().Order.LogRetentionDays
			count := r.system.CleanSystemLogs(ctx, days)
			return fmt.Sprintf("cleaned=%d", count), nil
		}, true
	case JobExecuteStatistics:
		return func(ctx context.Context) (string, error) {
			// 统计前一日的经营数据
			date := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
			if !r.system.ExecuteStatistics(ctx, date) {
				return "", fmt.Errorf("statistics execution for %s reported failure", date)
			}
			return "statistics=" + date, nil
		}, true
	}
	return nil, false
}

// BuildEntries 把配置中的调度表翻译成可执行条目，未知任务名直接跳过
func (r *Registry) BuildEntries(jobs []config.JobConfig) []Entry {
	entries := make([]Entry, 0, len(jobs))
	for _, jc := range jobs {
		fn, ok := r.Resolve(jc.Name)
		if !ok {
			logger.Ctx(context.Background()).Warn().
				Str("job", jc.Name).
				Msg("unknown job name in schedule config, skipping")
			continue
		}
		entries = append(entries, Entry{
			Name:     jc.Name,
			Group:    jc.Group,
			Params:   jc.Params,
			Interval: jc.Interval.Std(),
			Fn:       fn,
		})
	}
	return entries
}
