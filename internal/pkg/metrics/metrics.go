// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 订单生命周期与定时任务相关的核心指标
var (
	// OrderTransitionsTotal 订单状态流转次数，按起止状态区分
	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmall_order_transitions_total",
		Help: "Total number of order state transitions.",
	}, []string{"from", "to"})

	// OrdersAutoCancelledTotal 被超时对账自动取消的订单数
	OrdersAutoCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusmall_orders_auto_cancelled_total",
		Help: "Orders cancelled by the timeout reconciler.",
	})

	// OrdersAutoConfirmedTotal 被超时对账自动确认收货的订单数
	OrdersAutoConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusmall_orders_auto_confirmed_total",
		Help: "Orders confirmed by the timeout reconciler.",
	})

	// LockersReleasedTotal 被强制释放的取餐柜数量
	LockersReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusmall_lockers_released_total",
		Help: "Takeout lockers force-released by the timeout reconciler.",
	})

	// DegradedCallsTotal 触发降级返回兜底值的远程调用次数，按对端服务区分
	DegradedCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmall_degraded_calls_total",
		Help: "Remote calls that fell back to their degrade value.",
	}, []string{"peer"})

	// JobExecuteSeconds 定时任务执行耗时
	JobExecuteSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusmall_job_execute_seconds",
		Help:    "Execution time of scheduled jobs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	// JobFailuresTotal 定时任务失败次数
	JobFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmall_job_failures_total",
		Help: "Scheduled job runs that ended in failure.",
	}, []string{"job"})
)
