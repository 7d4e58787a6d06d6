// internal/service/order/domain/port/locker.go
package port

import "context"

// LockerService 是取餐柜资源的出站端口，实现基于 Redis
type LockerService interface {
	// Assign 为订单分配一个空闲取餐柜，返回柜号
	Assign(ctx context.Context, orderNo string) (string, error)

	// Release 释放取餐柜
	// 释放一个已空闲的柜子是无害的空操作，不是错误
	Release(ctx context.Context, lockerCode string) error
}
