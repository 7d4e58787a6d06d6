// internal/pkg/degrade/degrade.go
package degrade

import (
	"context"

	"campusmall/internal/pkg/logger"
	"campusmall/internal/pkg/metrics"
)

// Operation 是一次可能失败的远程调用
type Operation[T any] func(ctx context.Context) (T, error)

// Invoke 执行一次远程调用，失败时返回兜底值
// 只做单次尝试，不重试、不熔断探活：它的职责是阻断故障扩散，而不是恢复可用性
// 调用方无法在类型层面区分"对端正常返回空值"与"对端不可用被降级"，
// 需要区分的调用点应使用 InvokeTagged
func Invoke[T any](ctx context.Context, peer string, op Operation[T], fallback T) T {
	value, _ := InvokeTagged(ctx, peer, op, fallback)
	return value
}

// InvokeTagged 与 Invoke 行为一致，但额外返回本次调用是否发生了降级
// 状态机里"副作用硬失败必须中止流转"的路径依赖这个标记
func InvokeTagged[T any](ctx context.Context, peer string, op Operation[T], fallback T) (T, bool) {
	value, err := op(ctx)
	if err != nil {
		logger.Ctx(ctx).Warn().
			Err(err).
			Str("peer", peer).
			Msg("remote call failed, returning fallback value")
		metrics.DegradedCallsTotal.WithLabelValues(peer).Inc()
		return fallback, true
	}
	return value, false
}
