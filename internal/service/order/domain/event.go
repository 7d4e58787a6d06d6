// internal/service/order/domain/event.go
package domain

import "time"

// OrderStatusChanged 是订单状态流转后发布的领域事件
// 下游的消息推送、统计等服务通过 Kafka 订阅该事件
type OrderStatusChanged struct {
	OrderNo    string    `json:"orderNo"`
	OrderType  OrderType `json:"orderType"`
	FromStatus Status    `json:"fromStatus"`
	ToStatus   Status    `json:"toStatus"`
	Trigger    Trigger   `json:"trigger"`
	OccurredAt time.Time `json:"occurredAt"`
}

// OrderLockerReleased 取餐柜被强制释放时发布
type OrderLockerReleased struct {
	OrderNo    string    `json:"orderNo"`
	LockerCode string    `json:"lockerCode"`
	OccurredAt time.Time `json:"occurredAt"`
}
