package application

import (
	"context"
	"sync"
	"time"

	"campusmall/internal/service/order/domain"
)

// fakeOrderRepo 是内存版订单仓储，测试用
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	// failUpdate 指定某些订单号在落库时注入错误，模拟单笔失败
	failUpdate map[string]error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:     make(map[string]*domain.Order),
		failUpdate: make(map[string]error),
	}
}

func (f *fakeOrderRepo) put(o *domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.orders[o.OrderNo] = &cp
}

func (f *fakeOrderRepo) get(orderNo string) *domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderNo]; ok {
		cp := *o
		return &cp
	}
	return nil
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	f.put(order)
	return nil
}

func (f *fakeOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	if o := f.get(orderNo); o != nil {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderRepo) UpdateWithVersion(ctx context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failUpdate[order.OrderNo]; ok {
		return err
	}
	stored, ok := f.orders[order.OrderNo]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return domain.ErrConcurrentModify
	}
	order.Version++
	cp := *order
	f.orders[order.OrderNo] = &cp
	return nil
}

func (f *fakeOrderRepo) FindTimeoutPendingPayment(ctx context.Context, before time.Time, limit int) ([]*domain.Order, error) {
	return f.filter(limit, func(o *domain.Order) bool {
		return o.OrderType == domain.OrderTypeNormal && o.Status == domain.StatusPendingPayment && o.CreateTime.Before(before)
	})
}

func (f *fakeOrderRepo) FindTimeoutPendingReceive(ctx context.Context, before time.Time, limit int) ([]*domain.Order, error) {
	return f.filter(limit, func(o *domain.Order) bool {
		return o.OrderType == domain.OrderTypeNormal && o.Status == domain.StatusPendingReceive && o.UpdateTime.Before(before)
	})
}

func (f *fakeOrderRepo) FindLockerHolders(ctx context.Context, before time.Time, limit int) ([]*domain.Order, error) {
	return f.filter(limit, func(o *domain.Order) bool {
		return o.HoldsLocker() && o.UpdateTime.Before(before)
	})
}

func (f *fakeOrderRepo) filter(limit int, pred func(*domain.Order) bool) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Order
	for _, o := range f.orders {
		if pred(o) {
			cp := *o
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// fakeInventory 可编程的库存服务桩
type fakeInventory struct {
	mu           sync.Mutex
	released     []string
	rejectStock  bool  // 模拟业务硬失败
	transportErr error // 模拟基础设施故障
}

func (f *fakeInventory) ReleaseStock(ctx context.Context, orderNo string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transportErr != nil {
		return false, f.transportErr
	}
	if f.rejectStock {
		return false, nil
	}
	f.released = append(f.released, orderNo)
	return true, nil
}

func (f *fakeInventory) CheckStockWarning(ctx context.Context, threshold int) (int, error) {
	return 0, nil
}

// fakeLocker 内存取餐柜，释放空闲柜子为无害空操作
type fakeLocker struct {
	mu       sync.Mutex
	counter  int
	occupied map[string]bool
	releases int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{occupied: make(map[string]bool)}
}

func (f *fakeLocker) Assign(ctx context.Context, orderNo string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	code := "L-" + string(rune('A'+f.counter%26))
	f.occupied[code] = true
	return code, nil
}

func (f *fakeLocker) Release(ctx context.Context, lockerCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	delete(f.occupied, lockerCode)
	return nil
}

// fakeNotifier 收集发布的事件
type fakeNotifier struct {
	mu     sync.Mutex
	events []*domain.OrderStatusChanged
}

func (f *fakeNotifier) PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
