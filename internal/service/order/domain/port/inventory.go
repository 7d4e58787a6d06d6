// internal/service/order/domain/port/inventory.go
package port

import "context"

// InventoryService 是商品服务的出站端口
// 实现位于 infrastructure/adapter，通过 HTTP 调用 product-service
type InventoryService interface {
	// ReleaseStock 释放订单占用的库存
	// ok=false 且 err=nil 表示对端明确拒绝（业务硬失败），取消/退款流转必须中止；
	// err != nil 表示基础设施故障（超时、连接失败、5xx），由调用方决定是否降级放行
	ReleaseStock(ctx context.Context, orderNo string) (ok bool, err error)

	// CheckStockWarning 检查库存低于阈值的商品数
	CheckStockWarning(ctx context.Context, threshold int) (int, error)
}
