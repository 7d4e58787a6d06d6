// internal/service/order/application/reconciler.go
package application

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campusmall/internal/pkg/config"
	"campusmall/internal/pkg/constants"
	"campusmall/internal/pkg/degrade"
	"campusmall/internal/pkg/logger"
	"campusmall/internal/pkg/metrics"
	"campusmall/internal/service/order/application/rule"
	"campusmall/internal/service/order/domain"
	"campusmall/internal/service/order/domain/port"
)

// 对账规则名及其默认表达式，配置中同名规则覆盖默认值
const (
	RuleCancelTimeout  = "cancel_timeout"
	RuleConfirmTimeout = "confirm_timeout"
	RuleLockerTimeout  = "locker_timeout"
)

var defaultRuleExpressions = map[string]string{
	RuleCancelTimeout:  "status == 0 && ageMinutes >= threshold",
	RuleConfirmTimeout: "status == 4 && ageDays >= threshold",
	RuleLockerTimeout:  "holdsLocker && ageHours >= threshold",
}

// 对账器自身的运行状态: IDLE → RUNNING → (SUCCESS|FAILED) → IDLE
const (
	sweepIdle int32 = iota
	sweepRunning
)

// ErrSweepInProgress 同一对账器上的并发扫描请求直接拒绝，等待下个调度周期
var ErrSweepInProgress = errors.New("a reconciliation sweep is already running")

const defaultBatchLimit = 500

// TimeoutReconciler 周期性强制推进超时订单的状态
// 触发方式有两种：job-service 定时调用 order-service 的内部接口，
// 或运维通过接口手工触发；两者共用这一份实现
type TimeoutReconciler struct {
	orderRepo domain.OrderRepository
	inventory port.InventoryService
	locker    port.LockerService
	notifier  port.NotificationProducer
	tracer    trace.Tracer

	rules map[string]*rule.Engine
	now   func() time.Time
	state atomic.Int32

	batchLimit int
}

// NewTimeoutReconciler 创建对账器并编译全部规则表达式
func NewTimeoutReconciler(
	orderRepo domain.OrderRepository,
	inventory port.InventoryService,
	locker port.LockerService,
	notifier port.NotificationProducer,
	tracer trace.Tracer,
	cfgRules []config.ReconcileRule,
) (*TimeoutReconciler, error) {
	expressions := make(map[string]string, len(defaultRuleExpressions))
	for name, expr := range defaultRuleExpressions {
		expressions[name] = expr
	}
	for _, r := range cfgRules {
		if _, known := expressions[r.Name]; known {
			expressions[r.Name] = r.Expression
		}
	}

	rules := make(map[string]*rule.Engine, len(expressions))
	for name, expr := range expressions {
		engine, err := rule.NewEngine(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compile rule %s", name)
		}
		rules[name] = engine
	}

	return &TimeoutReconciler{
		orderRepo:  orderRepo,
		inventory:  inventory,
		locker:     locker,
		notifier:   notifier,
		tracer:     tracer,
		rules:      rules,
		now:        time.Now,
		batchLimit: defaultBatchLimit,
	}, nil
}

// CancelTimeoutOrders 取消超过 minutes 分钟仍未支付的订单
func (r *TimeoutReconciler) CancelTimeoutOrders(ctx context.Context, minutes int) (*SweepResult, error) {
	return r.sweep(ctx, "reconciler.CancelTimeoutOrders", func(ctx context.Context) (*SweepResult, error) {
		now := r.now()
		before := now.Add(-time.Duration(minutes) * time.Minute)
		orders, err := r.orderRepo.FindTimeoutPendingPayment(ctx, before, r.batchLimit)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan pending-payment orders")
		}

		result := &SweepResult{Scanned: len(orders)}
		engine := r.rules[RuleCancelTimeout]
		for _, order := range orders {
			matched, err := engine.Eval(map[string]interface{}{
				"status":     int(order.Status),
				"orderType":  int(order.OrderType),
				"ageMinutes": int(now.Sub(order.CreateTime).Minutes()),
				"threshold":  minutes,
			})
			if err != nil {
				r.recordOrderFailure(ctx, result, order, err)
				continue
			}
			if !matched {
				continue
			}
			if err := r.forceCancel(ctx, order); err != nil {
				r.recordOrderFailure(ctx, result, order, err)
				continue
			}
			result.Transitions++
			metrics.OrdersAutoCancelledTotal.Inc()
		}
		return result, nil
	})
}

// ConfirmTimeoutOrders 自动确认超过 days 天仍未确认收货的订单
func (r *TimeoutReconciler) ConfirmTimeoutOrders(ctx context.Context, days int) (*SweepResult, error) {
	return r.sweep(ctx, "reconciler.ConfirmTimeoutOrders", func(ctx context.Context) (*SweepResult, error) {
		now := r.now()
		before := now.Add(-time.Duration(days) * 24 * time.Hour)
		orders, err := r.orderRepo.FindTimeoutPendingReceive(ctx, before, r.batchLimit)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan pending-receive orders")
		}

		result := &SweepResult{Scanned: len(orders)}
		engine := r.rules[RuleConfirmTimeout]
		for _, order := range orders {
			matched, err := engine.Eval(map[string]interface{}{
				"status":    int(order.Status),
				"orderType": int(order.OrderType),
				"ageDays":   int(now.Sub(order.UpdateTime).Hours() / 24),
				"threshold": days,
			})
			if err != nil {
				r.recordOrderFailure(ctx, result, order, err)
				continue
			}
			if !matched {
				continue
			}
			if err := r.forceConfirm(ctx, order); err != nil {
				r.recordOrderFailure(ctx, result, order, err)
				continue
			}
			result.Transitions++
			metrics.OrdersAutoConfirmedTotal.Inc()
		}
		return result, nil
	})
}

// ReleaseTimeoutLockers 释放占用超过 hours 小时的取餐柜
// 这是纯副作用规则，不改变订单状态；释放已空闲的柜子是无害的空操作
func (r *TimeoutReconciler) ReleaseTimeoutLockers(ctx context.Context, hours int) (*SweepResult, error) {
	return r.sweep(ctx, "reconciler.ReleaseTimeoutLockers", func(ctx context.Context) (*SweepResult, error) {
		now := r.now()
		before := now.Add(-time.Duration(hours) * time.Hour)
		orders, err := r.orderRepo.FindLockerHolders(ctx, before, r.batchLimit)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan locker holders")
		}

		result := &SweepResult{Scanned: len(orders)}
		engine := r.rules[RuleLockerTimeout]
		for _, order := range orders {
			matched, err := engine.Eval(map[string]interface{}{
				"status":      int(order.Status),
				"orderType":   int(order.OrderType),
				"holdsLocker": order.HoldsLocker(),
				"ageHours":    int(now.Sub(order.UpdateTime).Hours()),
				"threshold":   hours,
			})
			if err != nil {
				r.recordOrderFailure(ctx, result, order, err)
				continue
			}
			if !matched {
				continue
			}
			if err := r.forceReleaseLocker(ctx, order); err != nil {
				r.recordOrderFailure(ctx, result, order, err)
				continue
			}
			result.Transitions++
			metrics.LockersReleasedTotal.Inc()
		}
		return result, nil
	})
}

// sweep 统一管理对账器的运行状态与批次级失败
func (r *TimeoutReconciler) sweep(ctx context.Context, spanName string, fn func(ctx context.Context) (*SweepResult, error)) (*SweepResult, error) {
	if !r.state.CompareAndSwap(sweepIdle, sweepRunning) {
		return nil, ErrSweepInProgress
	}
	defer r.state.Store(sweepIdle)

	ctx, span := r.tracer.Start(ctx, spanName)
	defer span.End()

	result, err := fn(ctx)
	if err != nil {
		// 批次级失败：记录后由调度器在下个周期重试，进程内不做重试循环
		span.RecordError(err)
		span.SetStatus(codes.Error, "sweep failed")
		logger.Ctx(ctx).Error().Err(err).Str("sweep", spanName).Msg("reconciliation sweep failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("sweep.scanned", result.Scanned),
		attribute.Int("sweep.transitions", result.Transitions),
		attribute.Int("sweep.failures", result.Failures),
	)
	logger.Ctx(ctx).Info().
		Str("sweep", spanName).
		Int("scanned", result.Scanned).
		Int("transitions", result.Transitions).
		Int("failures", result.Failures).
		Msg("reconciliation sweep finished")
	return result, nil
}

// forceCancel 对单笔订单执行超时取消：先释放库存，再流转落库
func (r *TimeoutReconciler) forceCancel(ctx context.Context, order *domain.Order) error {
	ok := degrade.Invoke(ctx, constants.ProductService, func(ctx context.Context) (bool, error) {
		return r.inventory.ReleaseStock(ctx, order.OrderNo)
	}, true)
	if !ok {
		return domain.NewSideEffectError(domain.ErrStockInsufficient)
	}

	from := order.Status
	if err := order.Cancel(false); err != nil {
		return err
	}
	if err := r.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return err
	}
	r.publish(ctx, order, from, domain.TriggerTimeoutCancel)
	return nil
}

func (r *TimeoutReconciler) forceConfirm(ctx context.Context, order *domain.Order) error {
	from := order.Status
	if err := order.Confirm(false); err != nil {
		return err
	}
	if err := r.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return err
	}
	r.publish(ctx, order, from, domain.TriggerTimeoutConfirm)
	return nil
}

// forceReleaseLocker 释放取餐柜并清空订单上的柜号
// 柜号清空后订单不再命中扫描条件，重复执行同一轮扫描不会产生额外动作
func (r *TimeoutReconciler) forceReleaseLocker(ctx context.Context, order *domain.Order) error {
	if err := r.locker.Release(ctx, order.LockerCode); err != nil {
		return err
	}
	order.LockerCode = ""
	return r.orderRepo.UpdateWithVersion(ctx, order)
}

// recordOrderFailure 单笔失败只记录不中断，批次继续处理剩余订单
func (r *TimeoutReconciler) recordOrderFailure(ctx context.Context, result *SweepResult, order *domain.Order, err error) {
	if errors.Is(err, domain.ErrConcurrentModify) {
		// 另一个触发源（如用户操作）已抢先流转，不算失败
		logger.Ctx(ctx).Debug().Str("order_no", order.OrderNo).Msg("order already transitioned concurrently, skipping")
		return
	}
	result.Failures++
	logger.Ctx(ctx).Error().Err(err).Str("order_no", order.OrderNo).Msg("failed to reconcile order, continuing with batch")
}

func (r *TimeoutReconciler) publish(ctx context.Context, order *domain.Order, from domain.Status, trigger domain.Trigger) {
	metrics.OrderTransitionsTotal.WithLabelValues(
		domain.StatusName(order.OrderType, from),
		domain.StatusName(order.OrderType, order.Status),
	).Inc()
	event := &domain.OrderStatusChanged{
		OrderNo:    order.OrderNo,
		OrderType:  order.OrderType,
		FromStatus: from,
		ToStatus:   order.Status,
		Trigger:    trigger,
		OccurredAt: r.now(),
	}
	degrade.Invoke(ctx, "kafka", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.notifier.PublishStatusChanged(ctx, event)
	}, struct{}{})
}
