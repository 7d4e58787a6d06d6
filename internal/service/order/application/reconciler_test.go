package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"campusmall/internal/service/order/domain"
)

func newTestReconciler(t *testing.T, repo *fakeOrderRepo, inv *fakeInventory, locker *fakeLocker, now time.Time) *TimeoutReconciler {
	t.Helper()
	r, err := NewTimeoutReconciler(repo, inv, locker, &fakeNotifier{}, otel.Tracer("test"), nil)
	require.NoError(t, err)
	r.now = func() time.Time { return now }
	return r
}

func pendingPaymentOrder(no string, createdAt time.Time) *domain.Order {
	o := domain.NewOrder(no, domain.OrderTypeNormal, 20)
	o.CreateTime = createdAt
	o.UpdateTime = createdAt
	return o
}

// 场景 B: 超时 31 分钟的待支付订单被自动取消
func TestCancelTimeoutOrders_CancelsExpired(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 31, 0, 0, time.Local)
	repo := newFakeOrderRepo()
	repo.put(pendingPaymentOrder("202509011200002222000", now.Add(-31*time.Minute)))

	r := newTestReconciler(t, repo, &fakeInventory{}, newFakeLocker(), now)

	result, err := r.CancelTimeoutOrders(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transitions)
	assert.Equal(t, 0, result.Failures)
	assert.Equal(t, domain.StatusCancelled, repo.get("202509011200002222000").Status)
}

// 场景 C: 未到超时阈值的订单不被触碰
func TestCancelTimeoutOrders_LeavesFreshOrders(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 10, 0, 0, time.Local)
	repo := newFakeOrderRepo()
	repo.put(pendingPaymentOrder("202509011200002222001", now.Add(-10*time.Minute)))

	r := newTestReconciler(t, repo, &fakeInventory{}, newFakeLocker(), now)

	result, err := r.CancelTimeoutOrders(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Transitions)
	assert.Equal(t, domain.StatusPendingPayment, repo.get("202509011200002222001").Status)
}

// 幂等性: 同一批数据上连续执行两次，第二次不产生任何额外流转
func TestCancelTimeoutOrders_Idempotent(t *testing.T) {
	now := time.Date(2025, 9, 1, 13, 0, 0, 0, time.Local)
	repo := newFakeOrderRepo()
	for _, no := range []string{"202509011200003333000", "202509011200003333001"} {
		repo.put(pendingPaymentOrder(no, now.Add(-2*time.Hour)))
	}

	r := newTestReconciler(t, repo, &fakeInventory{}, newFakeLocker(), now)

	first, err := r.CancelTimeoutOrders(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Transitions)

	second, err := r.CancelTimeoutOrders(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Transitions, "a repeated sweep must not transition anything")
	assert.Equal(t, 0, second.Scanned)
}

// 场景 E: 批次中第 3 单失败，其余 4 单照常处理
func TestCancelTimeoutOrders_IsolatesPerOrderFailures(t *testing.T) {
	now := time.Date(2025, 9, 1, 14, 0, 0, 0, time.Local)
	repo := newFakeOrderRepo()
	nos := []string{
		"202509011200004444000",
		"202509011200004444001",
		"202509011200004444002",
		"202509011200004444003",
		"202509011200004444004",
	}
	for _, no := range nos {
		repo.put(pendingPaymentOrder(no, now.Add(-1*time.Hour)))
	}
	repo.failUpdate[nos[2]] = errors.New("deadlock found when trying to get lock")

	r := newTestReconciler(t, repo, &fakeInventory{}, newFakeLocker(), now)

	result, err := r.CancelTimeoutOrders(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Transitions)
	assert.Equal(t, 1, result.Failures)

	for i, no := range nos {
		if i == 2 {
			assert.Equal(t, domain.StatusPendingPayment, repo.get(no).Status)
		} else {
			assert.Equal(t, domain.StatusCancelled, repo.get(no).Status)
		}
	}
}

// 被其它触发源抢先流转的订单按跳过处理，不算失败
func TestCancelTimeoutOrders_SkipsConcurrentlyModified(t *testing.T) {
	now := time.Date(2025, 9, 1, 15, 0, 0, 0, time.Local)
	repo := newFakeOrderRepo()
	repo.put(pendingPaymentOrder("202509011200005555000", now.Add(-1*time.Hour)))
	repo.failUpdate["202509011200005555000"] = domain.ErrConcurrentModify

	r := newTestReconciler(t, repo, &fakeInventory{}, newFakeLocker(), now)

	result, err := r.CancelTimeoutOrders(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Transitions)
	assert.Equal(t, 0, result.Failures)
}

func TestConfirmTimeoutOrders_CompletesStale(t *testing.T) {
	now := time.Date(2025, 9, 8, 9, 0, 0, 0, time.Local)
	repo := newFakeOrderRepo()

	o := domain.NewOrder("202509011200006666000", domain.OrderTypeNormal, 45)
	require.NoError(t, o.Pay(domain.PayTypeWechat))
	require.NoError(t, o.Ship())
	require.NoError(t, o.Dispatch())
	o.UpdateTime = now.Add(-8 * 24 * time.Hour)
	repo.put(o)

	r := newTestReconciler(t, repo, &fakeInventory{}, newFakeLocker(), now)

	result, err := r.ConfirmTimeoutOrders(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transitions)
	assert.Equal(t, domain.StatusCompleted, repo.get(o.OrderNo).Status)
}

func TestReleaseTimeoutLockers_ReleasesAndClearsCode(t *testing.T) {
	now := time.Date(2025, 9, 2, 13, 0, 0, 0, time.Local)
	repo := newFakeOrderRepo()
	locker := newFakeLocker()

	o := domain.NewOrder("TK-202509011200007777000", domain.OrderTypeTakeout, 18)
	o.DeliveryType = domain.DeliveryTypeLocker
	o.LockerCode = "L-B"
	o.UpdateTime = now.Add(-25 * time.Hour)
	repo.put(o)

	r := newTestReconciler(t, repo, &fakeInventory{}, locker, now)

	result, err := r.ReleaseTimeoutLockers(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transitions)
	assert.Equal(t, 1, locker.releases)
	assert.Empty(t, repo.get(o.OrderNo).LockerCode)

	// 状态不变：释放取餐柜是纯副作用规则
	assert.Equal(t, domain.TakeoutPending, repo.get(o.OrderNo).Status)

	// 再跑一轮，柜号已清空，不再命中
	second, err := r.ReleaseTimeoutLockers(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Transitions)
	assert.Equal(t, 1, locker.releases)
}

func TestSweep_RejectsConcurrentRun(t *testing.T) {
	now := time.Now()
	repo := newFakeOrderRepo()
	r := newTestReconciler(t, repo, &fakeInventory{}, newFakeLocker(), now)

	r.state.Store(sweepRunning)
	_, err := r.CancelTimeoutOrders(context.Background(), 30)
	require.ErrorIs(t, err, ErrSweepInProgress)

	r.state.Store(sweepIdle)
	_, err = r.CancelTimeoutOrders(context.Background(), 30)
	require.NoError(t, err)
}
