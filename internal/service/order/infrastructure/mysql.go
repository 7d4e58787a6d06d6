// internal/service/order/infrastructure/mysql.go
package infrastructure

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/pkg/errors"
)

// OpenMysql 建立 GORM 连接并迁移订单表
func OpenMysql(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mysql")
	}
	if err := db.AutoMigrate(&OrderModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate order table")
	}
	return db, nil
}
