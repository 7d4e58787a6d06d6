// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"campusmall/internal/service/order/domain"
)

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ domain.OrderRepository = (*GormOrderRepository)(nil)

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := ToOrderModel(order)
	touchUpdateTime(model)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrapf(err, "failed to insert order %s", order.OrderNo)
	}
	return nil
}

func (r *GormOrderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "failed to query order %s", orderNo)
	}
	return ToDomainOrder(&model), nil
}

// UpdateWithVersion 带乐观锁的更新
// WHERE 条件中携带旧版本号，影响行数为 0 即说明有并发触发源抢先更新，
// 返回 ErrConcurrentModify 由调用方决定跳过还是重试
func (r *GormOrderRepository) UpdateWithVersion(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("order_no = ? AND version = ?", order.OrderNo, order.Version).
		Updates(map[string]interface{}{
			"status":      int(order.Status),
			"pay_status":  int(order.PayStatus),
			"pay_type":    int(order.PayType),
			"locker_code": order.LockerCode,
			"update_time": order.UpdateTime,
			"version":     order.Version + 1,
		})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to update order %s", order.OrderNo)
	}
	if result.RowsAffected == 0 {
		return domain.ErrConcurrentModify
	}
	order.Version++
	return nil
}

func (r *GormOrderRepository) FindTimeoutPendingPayment(ctx context.Context, before time.Time, limit int) ([]*domain.Order, error) {
	return r.findByCondition(ctx, limit,
		"order_type = ? AND status = ? AND create_time < ?",
		int(domain.OrderTypeNormal), int(domain.StatusPendingPayment), before)
}

func (r *GormOrderRepository) FindTimeoutPendingReceive(ctx context.Context, before time.Time, limit int) ([]*domain.Order, error) {
	return r.findByCondition(ctx, limit,
		"order_type = ? AND status = ? AND update_time < ?",
		int(domain.OrderTypeNormal), int(domain.StatusPendingReceive), before)
}

func (r *GormOrderRepository) FindLockerHolders(ctx context.Context, before time.Time, limit int) ([]*domain.Order, error) {
	return r.findByCondition(ctx, limit,
		"delivery_type = ? AND locker_code <> '' AND update_time < ?",
		int(domain.DeliveryTypeLocker), before)
}

func (r *GormOrderRepository) findByCondition(ctx context.Context, limit int, query string, args ...interface{}) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("create_time ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan orders")
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders, nil
}
