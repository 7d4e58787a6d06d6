// internal/service/order/application/dto.go
package application

import "campusmall/internal/service/order/domain"

// CreateOrderRequest 是创建订单的应用层入参
type CreateOrderRequest struct {
	OrderType       domain.OrderType    `json:"orderType"`
	Amount          float64             `json:"amount"`
	PayType         domain.PayType      `json:"payType"`
	DeliveryType    domain.DeliveryType `json:"deliveryType"`
	PlaceName       string              `json:"placeName,omitempty"`
	Building        string              `json:"building,omitempty"`
	Room            string              `json:"room,omitempty"`
	ReceiverName    string              `json:"receiverName"`
	ReceiverPhone   string              `json:"receiverPhone"`
	ReceiverAddress string              `json:"receiverAddress"`
	Remark          string              `json:"remark,omitempty"`
}

// CreateOrderResponse 返回生成的订单号与初始状态
type CreateOrderResponse struct {
	OrderNo    string `json:"orderNo"`
	Status     int    `json:"status"`
	LockerCode string `json:"lockerCode,omitempty"`
}

// SweepResult 是一次对账扫描的结果
type SweepResult struct {
	Scanned     int `json:"scanned"`     // 命中查询条件的订单数
	Transitions int `json:"transitions"` // 实际完成的流转/释放数
	Failures    int `json:"failures"`    // 单笔失败数（已隔离，不中断批次）
}
