// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campusmall/internal/pkg/constants"
	"campusmall/internal/pkg/degrade"
	"campusmall/internal/pkg/logger"
	"campusmall/internal/pkg/metrics"
	"campusmall/internal/service/order/domain"
	"campusmall/internal/service/order/domain/port"
)

// 外卖/跑腿订单号使用带前缀的变体，普通订单为纯 21 位数字
const (
	takeoutOrderPrefix = "TK"
	errandOrderPrefix  = "PT"
)

// OrderApplicationService 负责订单生命周期的业务编排
// 状态流转规则在领域层，这里串联 仓储 / 库存 / 取餐柜 / 事件发布
type OrderApplicationService struct {
	orderRepo  domain.OrderRepository
	orderNoGen *domain.OrderNoGenerator
	tracer     trace.Tracer

	inventory port.InventoryService
	locker    port.LockerService
	notifier  port.NotificationProducer
}

func NewOrderApplicationService(
	orderRepo domain.OrderRepository,
	orderNoGen *domain.OrderNoGenerator,
	tracer trace.Tracer,
	inventory port.InventoryService,
	locker port.LockerService,
	notifier port.NotificationProducer,
) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo:  orderRepo,
		orderNoGen: orderNoGen,
		tracer:     tracer,
		inventory:  inventory,
		locker:     locker,
		notifier:   notifier,
	}
}

// CreateOrder 创建订单，初始状态为待支付/待接单
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()

	var orderNo string
	switch req.OrderType {
	case domain.OrderTypeTakeout:
		orderNo = s.orderNoGen.GenerateWithPrefix(takeoutOrderPrefix)
	case domain.OrderTypeErrand:
		orderNo = s.orderNoGen.GenerateWithPrefix(errandOrderPrefix)
	default:
		orderNo = s.orderNoGen.Generate()
	}

	order := domain.NewOrder(orderNo, req.OrderType, req.Amount)
	order.DeliveryType = req.DeliveryType
	order.PlaceName = req.PlaceName
	order.Building = req.Building
	order.Room = req.Room
	order.ReceiverName = req.ReceiverName
	order.ReceiverPhone = req.ReceiverPhone
	order.ReceiverAddress = req.ReceiverAddress
	order.Remark = req.Remark

	// 柜取订单在创建时占用一个取餐柜
	if req.DeliveryType == domain.DeliveryTypeLocker {
		code, err := s.locker.Assign(ctx, orderNo)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to assign locker")
			return nil, err
		}
		order.LockerCode = code
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		// 建单失败要把刚占的柜子还回去，释放是幂等的
		if order.HoldsLocker() {
			if relErr := s.locker.Release(ctx, order.LockerCode); relErr != nil {
				logger.Ctx(ctx).Error().Err(relErr).Str("locker", order.LockerCode).Msg("failed to release locker after create failure")
			}
		}
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("order_no", orderNo).Int("order_type", int(req.OrderType)).Msg("order created")
	return &CreateOrderResponse{
		OrderNo:    order.OrderNo,
		Status:     int(order.Status),
		LockerCode: order.LockerCode,
	}, nil
}

// PaySuccess 支付回调成功入口
func (s *OrderApplicationService) PaySuccess(ctx context.Context, orderNo string, payType domain.PayType) error {
	return s.transition(ctx, "app.PaySuccess", orderNo, domain.TriggerPaySuccess, func(o *domain.Order) error {
		return o.Pay(payType)
	})
}

// Ship 商家发货
func (s *OrderApplicationService) Ship(ctx context.Context, orderNo string) error {
	return s.transition(ctx, "app.Ship", orderNo, domain.TriggerMerchantShip, func(o *domain.Order) error {
		return o.Ship()
	})
}

// CourierAccept 骑手接单
func (s *OrderApplicationService) CourierAccept(ctx context.Context, orderNo string) error {
	return s.transition(ctx, "app.CourierAccept", orderNo, domain.TriggerCourierAccept, func(o *domain.Order) error {
		return o.AcceptByCourier()
	})
}

// Dispatch 配送出发
func (s *OrderApplicationService) Dispatch(ctx context.Context, orderNo string) error {
	return s.transition(ctx, "app.Dispatch", orderNo, domain.TriggerDispatch, func(o *domain.Order) error {
		return o.Dispatch()
	})
}

// Arrive 外卖/跑腿订单送达
func (s *OrderApplicationService) Arrive(ctx context.Context, orderNo string) error {
	return s.transition(ctx, "app.Arrive", orderNo, domain.TriggerTakeoutArrive, func(o *domain.Order) error {
		return o.Arrive()
	})
}

// ConfirmReceive 用户确认收货
func (s *OrderApplicationService) ConfirmReceive(ctx context.Context, orderNo string) error {
	return s.transition(ctx, "app.ConfirmReceive", orderNo, domain.TriggerUserConfirm, func(o *domain.Order) error {
		return o.Confirm(true)
	})
}

// CancelOrder 用户取消订单
// 取消前必须先释放占用的库存：对端不可用时降级放行并告警，
// 对端明确拒绝（业务硬失败）时中止流转，订单保持原状态
func (s *OrderApplicationService) CancelOrder(ctx context.Context, orderNo string) error {
	return s.transitionWithStockRelease(ctx, "app.CancelOrder", orderNo, func(o *domain.Order) error {
		return o.Cancel(true)
	})
}

// RequestRefund 受理退款申请
func (s *OrderApplicationService) RequestRefund(ctx context.Context, orderNo string) error {
	return s.transition(ctx, "app.RequestRefund", orderNo, domain.TriggerRefundRequest, func(o *domain.Order) error {
		return o.RequestRefund()
	})
}

// ApproveRefund 退款审核通过，同样要求先完成库存释放
func (s *OrderApplicationService) ApproveRefund(ctx context.Context, orderNo string) error {
	return s.transitionWithStockRelease(ctx, "app.ApproveRefund", orderNo, func(o *domain.Order) error {
		return o.ApproveRefund()
	})
}

// transition 是所有流转入口的公共骨架: 加载 → 领域流转 → 乐观锁落库 → 发布事件
func (s *OrderApplicationService) transition(ctx context.Context, spanName, orderNo string, trigger domain.Trigger, apply func(*domain.Order) error) error {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	order, err := s.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		span.RecordError(err)
		return err
	}
	from := order.Status

	if err := apply(order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition rejected")
		return err
	}

	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		span.RecordError(err)
		return err
	}

	s.publishStatusChanged(ctx, order, from, trigger)
	return nil
}

// transitionWithStockRelease 在落库前先通过降级安全调用释放库存
func (s *OrderApplicationService) transitionWithStockRelease(ctx context.Context, spanName, orderNo string, apply func(*domain.Order) error) error {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	order, err := s.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		span.RecordError(err)
		return err
	}
	from := order.Status

	// 先在内存中校验流转是否合法，再做外部副作用，
	// 避免为一笔注定被拒绝的流转白白释放库存
	snapshot := *order
	if err := apply(&snapshot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition rejected")
		return err
	}

	ok := degrade.Invoke(ctx, constants.ProductService, func(ctx context.Context) (bool, error) {
		return s.inventory.ReleaseStock(ctx, order.OrderNo)
	}, true) // 对端不可用时降级放行，由下一轮对账补偿
	if !ok {
		err := domain.NewSideEffectError(domain.ErrStockInsufficient)
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock release rejected")
		return err
	}

	if err := apply(order); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		span.RecordError(err)
		return err
	}

	s.publishStatusChanged(ctx, order, from, s.triggerFor(order, from))
	return nil
}

// triggerFor 还原这次流转所使用的触发动作，仅用于事件标注
func (s *OrderApplicationService) triggerFor(order *domain.Order, from domain.Status) domain.Trigger {
	if order.Status == domain.StatusRefunding {
		return domain.TriggerRefundRequest
	}
	if order.Status == domain.StatusRefunded {
		return domain.TriggerRefundApprove
	}
	return domain.TriggerUserCancel
}

// publishStatusChanged 发布状态变更事件，发布失败不阻断主流程
func (s *OrderApplicationService) publishStatusChanged(ctx context.Context, order *domain.Order, from domain.Status, trigger domain.Trigger) {
	metrics.OrderTransitionsTotal.WithLabelValues(
		domain.StatusName(order.OrderType, from),
		domain.StatusName(order.OrderType, order.Status),
	).Inc()

	event := &domain.OrderStatusChanged{
		OrderNo:    order.OrderNo,
		OrderType:  order.OrderType,
		FromStatus: from,
		ToStatus:   order.Status,
		Trigger:    trigger,
		OccurredAt: time.Now(),
	}
	degrade.Invoke(ctx, "kafka", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.notifier.PublishStatusChanged(ctx, event)
	}, struct{}{})
}
