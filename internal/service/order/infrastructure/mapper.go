// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"time"

	"campusmall/internal/service/order/domain"
)

// ToDomainOrder 把数据库模型转换为领域实体
func ToDomainOrder(m *OrderModel) *domain.Order {
	o := &domain.Order{
		OrderNo:         m.OrderNo,
		OrderType:       domain.OrderType(m.OrderType),
		Status:          domain.Status(m.Status),
		PayStatus:       domain.PayStatus(m.PayStatus),
		PayType:         domain.PayType(m.PayType),
		Amount:          m.Amount,
		CreateTime:      m.CreateTime,
		UpdateTime:      m.UpdateTime,
		DeliveryType:    domain.DeliveryType(m.DeliveryType),
		LockerCode:      m.LockerCode,
		PlaceName:       m.PlaceName,
		Building:        m.Building,
		Room:            m.Room,
		ReceiverName:    m.ReceiverName,
		ReceiverPhone:   m.ReceiverPhone,
		ReceiverAddress: m.ReceiverAddress,
		Remark:          m.Remark,
		Version:         m.Version,
	}
	if m.ExpectedTime != nil {
		o.ExpectedTime = *m.ExpectedTime
	}
	return o
}

// ToOrderModel 把领域实体转换为数据库模型
func ToOrderModel(o *domain.Order) *OrderModel {
	m := &OrderModel{
		OrderNo:         o.OrderNo,
		OrderType:       int(o.OrderType),
		Status:          int(o.Status),
		PayStatus:       int(o.PayStatus),
		PayType:         int(o.PayType),
		Amount:          o.Amount,
		CreateTime:      o.CreateTime,
		UpdateTime:      o.UpdateTime,
		DeliveryType:    int(o.DeliveryType),
		LockerCode:      o.LockerCode,
		PlaceName:       o.PlaceName,
		Building:        o.Building,
		Room:            o.Room,
		ReceiverName:    o.ReceiverName,
		ReceiverPhone:   o.ReceiverPhone,
		ReceiverAddress: o.ReceiverAddress,
		Remark:          o.Remark,
		Version:         o.Version,
	}
	if !o.ExpectedTime.IsZero() {
		t := o.ExpectedTime
		m.ExpectedTime = &t
	}
	return m
}

// touchUpdateTime 保证落库的更新时间不早于实体上的时间
func touchUpdateTime(m *OrderModel) {
	if m.UpdateTime.IsZero() {
		m.UpdateTime = time.Now()
	}
}
