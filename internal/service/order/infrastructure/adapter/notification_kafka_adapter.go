// internal/service/order/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"campusmall/internal/pkg/logger"
	"campusmall/internal/pkg/mq"
	"campusmall/internal/service/order/domain"
	"campusmall/internal/service/order/domain/port"
)

// NotificationKafkaAdapter 把订单状态变更事件写入 Kafka
// 以订单号为分区键，保证同一订单的事件在分区内有序
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

var _ port.NotificationProducer = (*NotificationKafkaAdapter)(nil)

func (a *NotificationKafkaAdapter) PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_no", event.OrderNo).Msg("failed to marshal order status event")
		return err
	}
	if err := mq.ProduceMessage(ctx, a.writer, []byte(event.OrderNo), payload); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_no", event.OrderNo).Msg("failed to produce order status event")
		return err
	}
	return nil
}
