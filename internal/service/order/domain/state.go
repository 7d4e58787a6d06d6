// internal/service/order/domain/state.go
package domain

// OrderType 区分订单所走的生命周期
type OrderType int

const (
	OrderTypeNormal  OrderType = 0 // 普通商城订单
	OrderTypeTakeout OrderType = 1 // 外卖订单
	OrderTypeErrand  OrderType = 2 // 跑腿/代送订单，与外卖共用状态集
)

// Status 是订单状态码
// 普通订单与外卖订单使用两套并行的状态集，数值按历史库表定义，不可改动
type Status int

// 普通订单状态
const (
	StatusPendingPayment Status = 0 // 待支付
	StatusPaid           Status = 1 // 已支付
	StatusPendingDeliver Status = 2 // 待发货
	StatusWaitingAccept  Status = 3 // 待骑手接单
	StatusPendingReceive Status = 4 // 待收货
	StatusCompleted      Status = 5 // 已完成
	StatusCancelled      Status = 6 // 已取消
	StatusRefunding      Status = 7 // 退款中
	StatusRefunded       Status = 8 // 已退款
)

// 外卖/跑腿订单状态
const (
	TakeoutPending    Status = 0 // 待接单
	TakeoutAccepted   Status = 1 // 已接单
	TakeoutDelivering Status = 2 // 配送中
	TakeoutDelivered  Status = 3 // 已送达
	TakeoutCancelled  Status = 4 // 已取消
	TakeoutCompleted  Status = 5 // 已完成
)

// Trigger 是驱动状态流转的业务动作
type Trigger string

const (
	TriggerPaySuccess     Trigger = "PAY_SUCCESS"     // 支付回调成功
	TriggerUserCancel     Trigger = "USER_CANCEL"     // 用户主动取消
	TriggerTimeoutCancel  Trigger = "TIMEOUT_CANCEL"  // 超时对账自动取消
	TriggerMerchantShip   Trigger = "MERCHANT_SHIP"   // 商家发货
	TriggerCourierAccept  Trigger = "COURIER_ACCEPT"  // 骑手接单
	TriggerDispatch       Trigger = "DISPATCH"        // 配送出发
	TriggerUserConfirm    Trigger = "USER_CONFIRM"    // 用户确认收货
	TriggerTimeoutConfirm Trigger = "TIMEOUT_CONFIRM" // 超时对账自动确认
	TriggerRefundRequest  Trigger = "REFUND_REQUEST"  // 退款申请通过受理
	TriggerRefundApprove  Trigger = "REFUND_APPROVE"  // 退款审核通过

	TriggerTakeoutAccept   Trigger = "TAKEOUT_ACCEPT"   // 商家/骑手接外卖单
	TriggerTakeoutDeliver  Trigger = "TAKEOUT_DELIVER"  // 外卖开始配送
	TriggerTakeoutArrive   Trigger = "TAKEOUT_ARRIVE"   // 外卖送达
	TriggerTakeoutComplete Trigger = "TAKEOUT_COMPLETE" // 外卖完成
	TriggerTakeoutCancel   Trigger = "TAKEOUT_CANCEL"   // 外卖取消
)

type transitionKey struct {
	from    Status
	trigger Trigger
}

// normalTransitions 是普通订单的完整流转表
// 除取消/退款分支外单向推进，不允许跳过中间状态
var normalTransitions = map[transitionKey]Status{
	{StatusPendingPayment, TriggerPaySuccess}:     StatusPaid,
	{StatusPendingPayment, TriggerUserCancel}:     StatusCancelled,
	{StatusPendingPayment, TriggerTimeoutCancel}:  StatusCancelled,
	{StatusPaid, TriggerMerchantShip}:             StatusPendingDeliver,
	{StatusPendingDeliver, TriggerCourierAccept}:  StatusWaitingAccept,
	{StatusPendingDeliver, TriggerDispatch}:       StatusPendingReceive,
	{StatusWaitingAccept, TriggerDispatch}:        StatusPendingReceive,
	{StatusPendingReceive, TriggerUserConfirm}:    StatusCompleted,
	{StatusPendingReceive, TriggerTimeoutConfirm}: StatusCompleted,

	// 任意非终态都可以进入退款分支
	{StatusPendingPayment, TriggerRefundRequest}: StatusRefunding,
	{StatusPaid, TriggerRefundRequest}:           StatusRefunding,
	{StatusPendingDeliver, TriggerRefundRequest}: StatusRefunding,
	{StatusWaitingAccept, TriggerRefundRequest}:  StatusRefunding,
	{StatusPendingReceive, TriggerRefundRequest}: StatusRefunding,
	{StatusRefunding, TriggerRefundApprove}:      StatusRefunded,
}

// takeoutTransitions 是外卖/跑腿订单的流转表
var takeoutTransitions = map[transitionKey]Status{
	{TakeoutPending, TriggerTakeoutAccept}:     TakeoutAccepted,
	{TakeoutAccepted, TriggerTakeoutDeliver}:   TakeoutDelivering,
	{TakeoutDelivering, TriggerTakeoutArrive}:  TakeoutDelivered,
	{TakeoutDelivered, TriggerTakeoutComplete}: TakeoutCompleted,
	{TakeoutPending, TriggerTakeoutCancel}:     TakeoutCancelled,
	{TakeoutAccepted, TriggerTakeoutCancel}:    TakeoutCancelled,
	{TakeoutPending, TriggerTimeoutCancel}:     TakeoutCancelled,
}

// Next 计算 (当前状态, 触发动作) 的下一个状态
// 不合法的组合返回 ORDER_STATUS_ERROR，永远不会静默忽略
func Next(orderType OrderType, from Status, trigger Trigger) (Status, error) {
	table := normalTransitions
	if orderType == OrderTypeTakeout || orderType == OrderTypeErrand {
		table = takeoutTransitions
	}
	next, ok := table[transitionKey{from, trigger}]
	if !ok {
		return from, NewOrderStatusError(from, trigger)
	}
	return next, nil
}

// IsTerminal 判断一个状态是否为终态，终态不再接受任何流转
func IsTerminal(orderType OrderType, s Status) bool {
	if orderType == OrderTypeTakeout || orderType == OrderTypeErrand {
		return s == TakeoutCancelled || s == TakeoutCompleted
	}
	return s == StatusCompleted || s == StatusCancelled || s == StatusRefunded
}

// StatusName 返回状态的可读名称，用于日志与事件
func StatusName(orderType OrderType, s Status) string {
	if orderType == OrderTypeTakeout || orderType == OrderTypeErrand {
		switch s {
		case TakeoutPending:
			return "PENDING"
		case TakeoutAccepted:
			return "ACCEPTED"
		case TakeoutDelivering:
			return "DELIVERING"
		case TakeoutDelivered:
			return "DELIVERED"
		case TakeoutCancelled:
			return "CANCELLED"
		case TakeoutCompleted:
			return "COMPLETED"
		}
		return "UNKNOWN"
	}
	switch s {
	case StatusPendingPayment:
		return "PENDING_PAYMENT"
	case StatusPaid:
		return "PAID"
	case StatusPendingDeliver:
		return "PENDING_DELIVERY"
	case StatusWaitingAccept:
		return "WAITING_ACCEPT"
	case StatusPendingReceive:
		return "PENDING_RECEIVE"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusRefunding:
		return "REFUNDING"
	case StatusRefunded:
		return "REFUNDED"
	}
	return "UNKNOWN"
}
