// internal/service/order/infrastructure/model.go
package infrastructure

import "time"

// OrderModel 是订单表的 GORM 模型，字段对应既有库表结构
type OrderModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OrderNo   string `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null"`
	OrderType int    `gorm:"column:order_type;not null;index:idx_type_status"`
	Status    int    `gorm:"column:status;not null;index:idx_type_status"`
	PayStatus int    `gorm:"column:pay_status;not null;default:0"`
	PayType   int    `gorm:"column:pay_type;not null;default:0"`
	Amount    float64 `gorm:"column:amount;type:decimal(10,2);not null"`

	CreateTime   time.Time  `gorm:"column:create_time;not null;index"`
	UpdateTime   time.Time  `gorm:"column:update_time;not null"`
	ExpectedTime *time.Time `gorm:"column:expected_time"`

	DeliveryType int    `gorm:"column:delivery_type;not null;default:0"`
	LockerCode   string `gorm:"column:locker_code;type:varchar(16);index"`
	PlaceName    string `gorm:"column:place_name;type:varchar(64)"`
	Building     string `gorm:"column:building;type:varchar(32)"`
	Room         string `gorm:"column:room;type:varchar(16)"`

	ReceiverName    string `gorm:"column:receiver_name;type:varchar(32)"`
	ReceiverPhone   string `gorm:"column:receiver_phone;type:varchar(16)"`
	ReceiverAddress string `gorm:"column:receiver_address;type:varchar(255)"`
	Remark          string `gorm:"column:remark;type:varchar(255)"`

	// 乐观锁版本号，并发流转的串行化依据
	Version int64 `gorm:"column:version;not null;default:0"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "t_order"
}
