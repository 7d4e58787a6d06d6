// internal/service/order/domain/order.go
package domain

import (
	"time"
)

// PayStatus 支付状态
type PayStatus int

const (
	PayStatusUnpaid   PayStatus = 0
	PayStatusPaid     PayStatus = 1
	PayStatusRefunded PayStatus = 2
)

// PayType 支付方式
type PayType int

const (
	PayTypeWechat  PayType = 1
	PayTypeAlipay  PayType = 2
	PayTypeBalance PayType = 3
)

// DeliveryType 配送方式，决定使用哪组配送字段
type DeliveryType int

const (
	DeliveryTypeLocker    DeliveryType = 1 // 取餐柜
	DeliveryTypePlace     DeliveryType = 2 // 指定地点
	DeliveryTypeDormitory DeliveryType = 3 // 宿舍楼+房间号
)

// Order 是订单聚合的根实体
type Order struct {
	OrderNo   string // 全局唯一，生成后不可变
	OrderType OrderType
	Status    Status
	PayStatus PayStatus
	PayType   PayType
	Amount    float64

	CreateTime   time.Time
	UpdateTime   time.Time
	ExpectedTime time.Time // 对账规则使用的期望送达/截止时间

	DeliveryType DeliveryType
	LockerCode   string // DeliveryTypeLocker 时有效
	PlaceName    string // DeliveryTypePlace 时有效
	Building     string // DeliveryTypeDormitory 时有效
	Room         string

	ReceiverName    string
	ReceiverPhone   string
	ReceiverAddress string
	Remark          string

	// Version 乐观锁版本号，每次更新递增
	// 同一订单的并发流转（用户操作 vs 对账扫描）靠它串行化
	Version int64
}

// NewOrder 创建一个新订单，初始状态为待支付（外卖为待接单，同为 0 值）
func NewOrder(orderNo string, orderType OrderType, amount float64) *Order {
	now := time.Now()
	return &Order{
		OrderNo:    orderNo,
		OrderType:  orderType,
		Status:     StatusPendingPayment,
		PayStatus:  PayStatusUnpaid,
		Amount:     amount,
		CreateTime: now,
		UpdateTime: now,
	}
}

// Transition 按流转表推进状态，非法流转返回 ORDER_STATUS_ERROR 且实体不变
func (o *Order) Transition(trigger Trigger) error {
	next, err := Next(o.OrderType, o.Status, trigger)
	if err != nil {
		return err
	}
	o.Status = next
	o.UpdateTime = time.Now()
	return nil
}

// Pay 支付回调成功
func (o *Order) Pay(payType PayType) error {
	if err := o.Transition(TriggerPaySuccess); err != nil {
		return err
	}
	o.PayStatus = PayStatusPaid
	o.PayType = payType
	return nil
}

// Ship 商家发货
func (o *Order) Ship() error {
	return o.Transition(TriggerMerchantShip)
}

// AcceptByCourier 骑手接单
func (o *Order) AcceptByCourier() error {
	if o.OrderType == OrderTypeTakeout || o.OrderType == OrderTypeErrand {
		return o.Transition(TriggerTakeoutAccept)
	}
	return o.Transition(TriggerCourierAccept)
}

// Dispatch 配送出发
func (o *Order) Dispatch() error {
	if o.OrderType == OrderTypeTakeout || o.OrderType == OrderTypeErrand {
		return o.Transition(TriggerTakeoutDeliver)
	}
	return o.Transition(TriggerDispatch)
}

// Arrive 外卖/跑腿送达，普通订单没有这一步
func (o *Order) Arrive() error {
	return o.Transition(TriggerTakeoutArrive)
}

// Confirm 确认收货，userTriggered 区分用户确认与超时自动确认
// 外卖/跑腿订单的"确认"即完成送达后的单据闭环
func (o *Order) Confirm(userTriggered bool) error {
	if o.OrderType == OrderTypeTakeout || o.OrderType == OrderTypeErrand {
		return o.Transition(TriggerTakeoutComplete)
	}
	trigger := TriggerTimeoutConfirm
	if userTriggered {
		trigger = TriggerUserConfirm
	}
	return o.Transition(trigger)
}

// Cancel 取消订单，userTriggered 区分用户取消与超时自动取消
func (o *Order) Cancel(userTriggered bool) error {
	trigger := TriggerTimeoutCancel
	if userTriggered {
		trigger = TriggerUserCancel
		if o.OrderType == OrderTypeTakeout || o.OrderType == OrderTypeErrand {
			trigger = TriggerTakeoutCancel
		}
	}
	return o.Transition(trigger)
}

// RequestRefund 受理退款申请
func (o *Order) RequestRefund() error {
	return o.Transition(TriggerRefundRequest)
}

// ApproveRefund 退款审核通过
func (o *Order) ApproveRefund() error {
	if err := o.Transition(TriggerRefundApprove); err != nil {
		return err
	}
	o.PayStatus = PayStatusRefunded
	return nil
}

// IsTerminal 是否处于终态
func (o *Order) IsTerminal() bool {
	return IsTerminal(o.OrderType, o.Status)
}

// HoldsLocker 是否占用着取餐柜
func (o *Order) HoldsLocker() bool {
	return o.DeliveryType == DeliveryTypeLocker && o.LockerCode != ""
}
