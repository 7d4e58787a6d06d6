// internal/pkg/constants/constants.go
package constants

// 各下游服务在 Nacos 中注册的服务名
const (
	OrderService   = "order-service"
	ProductService = "product-service"
	SystemService  = "system-service"
)

// order-service 对内暴露的超时对账接口
const (
	OrderCancelTimeoutPath  = "/internal/order/cancelTimeoutOrders"
	OrderConfirmTimeoutPath = "/internal/order/confirmTimeoutOrders"
	OrderReleaseLockersPath = "/internal/order/releaseTimeoutLockers"
)

// product-service 接口
const (
	ProductReleaseStockPath = "/internal/product/releaseStock"
	ProductStockWarningPath = "/internal/product/checkStockWarning"
)

// system-service 接口
const (
	SystemCleanLogsPath  = "/internal/system/cleanLogs"
	SystemStatisticsPath = "/internal/system/executeStatistics"
)
