// internal/service/order/domain/port/notification.go
package port

import (
	"context"

	"campusmall/internal/service/order/domain"
)

// NotificationProducer 把订单状态变更事件发布给下游
// Kafka 实现位于 infrastructure/adapter；事件发布失败不阻断主流程
type NotificationProducer interface {
	PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error
}
