// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"time"
)

// OrderRepository 定义订单聚合的持久化接口，位于领域层，由基础设施层实现
type OrderRepository interface {
	// Create 插入一个新订单
	Create(ctx context.Context, order *Order) error

	// FindByOrderNo 根据订单号查找，不存在时返回 ErrOrderNotFound
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateWithVersion 按乐观锁版本更新订单
	// 版本不匹配（并发触发源已抢先更新）时返回 ErrConcurrentModify，实体的 Version 不递增
	UpdateWithVersion(ctx context.Context, order *Order) error

	// FindTimeoutPendingPayment 查出创建时间早于 before 且仍处于待支付的普通订单
	// 已流转的订单天然被状态条件排除，对账扫描因此是幂等的
	FindTimeoutPendingPayment(ctx context.Context, before time.Time, limit int) ([]*Order, error)

	// FindTimeoutPendingReceive 查出发货时间早于 before 且仍处于待收货的普通订单
	FindTimeoutPendingReceive(ctx context.Context, before time.Time, limit int) ([]*Order, error)

	// FindLockerHolders 查出占用取餐柜超过期限的订单
	FindLockerHolders(ctx context.Context, before time.Time, limit int) ([]*Order, error)
}
