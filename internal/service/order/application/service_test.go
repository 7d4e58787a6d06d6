package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"campusmall/internal/service/order/domain"
)

func newTestService(repo *fakeOrderRepo, inv *fakeInventory, locker *fakeLocker, notifier *fakeNotifier) *OrderApplicationService {
	return NewOrderApplicationService(
		repo,
		domain.NewOrderNoGenerator(),
		otel.Tracer("test"),
		inv,
		locker,
		notifier,
	)
}

func TestCreateOrder_GeneratesOrderNoAndPersists(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, &fakeInventory{}, newFakeLocker(), &fakeNotifier{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		OrderType: domain.OrderTypeNormal,
		Amount:    19.80,
	})
	require.NoError(t, err)
	assert.Len(t, resp.OrderNo, 21)
	assert.Equal(t, int(domain.StatusPendingPayment), resp.Status)

	stored := repo.get(resp.OrderNo)
	require.NotNil(t, stored)
	assert.Equal(t, 19.80, stored.Amount)
}

func TestCreateOrder_TakeoutUsesPrefixAndLocker(t *testing.T) {
	repo := newFakeOrderRepo()
	locker := newFakeLocker()
	svc := newTestService(repo, &fakeInventory{}, locker, &fakeNotifier{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		OrderType:    domain.OrderTypeTakeout,
		Amount:       15,
		DeliveryType: domain.DeliveryTypeLocker,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.OrderNo, "TK-")
	assert.NotEmpty(t, resp.LockerCode)
}

func TestPaySuccess_Transition(t *testing.T) {
	repo := newFakeOrderRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, &fakeInventory{}, newFakeLocker(), notifier)

	order := domain.NewOrder("202509011200001111000", domain.OrderTypeNormal, 30)
	repo.put(order)

	require.NoError(t, svc.PaySuccess(context.Background(), order.OrderNo, domain.PayTypeWechat))

	stored := repo.get(order.OrderNo)
	assert.Equal(t, domain.StatusPaid, stored.Status)
	assert.Equal(t, domain.PayStatusPaid, stored.PayStatus)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, domain.TriggerPaySuccess, notifier.events[0].Trigger)
}

// 场景 D: 已取消订单再支付被拒绝，状态不变
func TestPaySuccess_RejectedFromCancelled(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, &fakeInventory{}, newFakeLocker(), &fakeNotifier{})

	order := domain.NewOrder("202509011200001111001", domain.OrderTypeNormal, 30)
	require.NoError(t, order.Cancel(true))
	repo.put(order)

	err := svc.PaySuccess(context.Background(), order.OrderNo, domain.PayTypeWechat)
	require.Error(t, err)

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeOrderStatusError, de.Code)
	assert.Equal(t, domain.StatusCancelled, repo.get(order.OrderNo).Status)
}

func TestCancelOrder_ReleasesStockFirst(t *testing.T) {
	repo := newFakeOrderRepo()
	inv := &fakeInventory{}
	svc := newTestService(repo, inv, newFakeLocker(), &fakeNotifier{})

	order := domain.NewOrder("202509011200001111002", domain.OrderTypeNormal, 30)
	repo.put(order)

	require.NoError(t, svc.CancelOrder(context.Background(), order.OrderNo))
	assert.Equal(t, domain.StatusCancelled, repo.get(order.OrderNo).Status)
	assert.Equal(t, []string{order.OrderNo}, inv.released)
}

// 库存服务明确拒绝时取消被中止，订单保持原状态
func TestCancelOrder_AbortsOnHardStockFailure(t *testing.T) {
	repo := newFakeOrderRepo()
	inv := &fakeInventory{rejectStock: true}
	svc := newTestService(repo, inv, newFakeLocker(), &fakeNotifier{})

	order := domain.NewOrder("202509011200001111003", domain.OrderTypeNormal, 30)
	repo.put(order)

	err := svc.CancelOrder(context.Background(), order.OrderNo)
	require.Error(t, err)

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeOrderSideEffectFailed, de.Code)
	assert.Equal(t, domain.StatusPendingPayment, repo.get(order.OrderNo).Status)
}

// 库存服务不可用（基础设施故障）时降级放行，取消照常完成
func TestCancelOrder_DegradesOnTransportFailure(t *testing.T) {
	repo := newFakeOrderRepo()
	inv := &fakeInventory{transportErr: errors.New("connection refused")}
	svc := newTestService(repo, inv, newFakeLocker(), &fakeNotifier{})

	order := domain.NewOrder("202509011200001111004", domain.OrderTypeNormal, 30)
	repo.put(order)

	require.NoError(t, svc.CancelOrder(context.Background(), order.OrderNo))
	assert.Equal(t, domain.StatusCancelled, repo.get(order.OrderNo).Status)
}

func TestRefundFlow(t *testing.T) {
	repo := newFakeOrderRepo()
	inv := &fakeInventory{}
	svc := newTestService(repo, inv, newFakeLocker(), &fakeNotifier{})

	order := domain.NewOrder("202509011200001111005", domain.OrderTypeNormal, 50)
	require.NoError(t, order.Pay(domain.PayTypeAlipay))
	repo.put(order)

	require.NoError(t, svc.RequestRefund(context.Background(), order.OrderNo))
	assert.Equal(t, domain.StatusRefunding, repo.get(order.OrderNo).Status)

	require.NoError(t, svc.ApproveRefund(context.Background(), order.OrderNo))
	stored := repo.get(order.OrderNo)
	assert.Equal(t, domain.StatusRefunded, stored.Status)
	assert.Equal(t, domain.PayStatusRefunded, stored.PayStatus)
	assert.Contains(t, inv.released, order.OrderNo)
}

func TestFullDeliveryLifecycle(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, &fakeInventory{}, newFakeLocker(), &fakeNotifier{})

	order := domain.NewOrder("202509011200001111006", domain.OrderTypeNormal, 88)
	repo.put(order)

	ctx := context.Background()
	require.NoError(t, svc.PaySuccess(ctx, order.OrderNo, domain.PayTypeWechat))
	require.NoError(t, svc.Ship(ctx, order.OrderNo))
	require.NoError(t, svc.CourierAccept(ctx, order.OrderNo))
	require.NoError(t, svc.Dispatch(ctx, order.OrderNo))
	require.NoError(t, svc.ConfirmReceive(ctx, order.OrderNo))

	assert.Equal(t, domain.StatusCompleted, repo.get(order.OrderNo).Status)
}
