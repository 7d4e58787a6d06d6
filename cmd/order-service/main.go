// cmd/order-service/main.go
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel"

	"campusmall/internal/pkg/bootstrap"
	"campusmall/internal/pkg/config"
	"campusmall/internal/pkg/constants"
	"campusmall/internal/pkg/httpclient"
	"campusmall/internal/pkg/mq"
	"campusmall/internal/pkg/redis"
	"campusmall/internal/service/order/application"
	"campusmall/internal/service/order/domain"
	"campusmall/internal/service/order/infrastructure"
	"campusmall/internal/service/order/infrastructure/adapter"
	"campusmall/internal/service/order/interfaces"
)

const servicePort = 8081

// main 是订单服务的组装根：创建并组装所有依赖项，然后启动应用
func main() {
	bootstrap.Init(constants.OrderService)
	cfg := config.GetCurrentConfig()

	db, err := infrastructure.OpenMysql(cfg.Infra.Mysql.DSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}

	redisClient, err := redis.NewClient(context.Background(), cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
	if err != nil {
		log.Fatalf("failed to initialize redis client: %v", err)
	}

	kafkaWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderEventTopic)

	tracer := otel.Tracer(constants.OrderService)

	lockerAdapter, err := adapter.NewLockerRedisAdapter(redisClient)
	if err != nil {
		log.Fatalf("failed to initialize locker adapter: %v", err)
	}

	// (可选, 开发环境用) 初始化一批空闲取餐柜
	if codes := os.Getenv("LOCKER_CODES"); codes != "" {
		if err := lockerAdapter.PrepareLockers(context.Background(), strings.Split(codes, ",")); err != nil {
			log.Printf("WARN: could not prepare locker pool: %v", err)
		}
	}

	orderRepo := infrastructure.NewGormOrderRepository(db)
	notifier := adapter.NewNotificationKafkaAdapter(kafkaWriter)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: constants.OrderService,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			// 库存服务通过 Nacos 发现，客户端要等注册中心就绪后再组装
			httpClient := httpclient.NewClient(tracer, appCtx.Nacos)
			inventory := adapter.NewInventoryHTTPAdapter(httpClient)

			service := application.NewOrderApplicationService(
				orderRepo,
				domain.NewOrderNoGenerator(),
				tracer,
				inventory,
				lockerAdapter,
				notifier,
			)

			reconciler, err := application.NewTimeoutReconciler(
				orderRepo,
				inventory,
				lockerAdapter,
				notifier,
				tracer,
				cfg.Order.Rules,
			)
			if err != nil {
				log.Fatalf("failed to build timeout reconciler: %v", err)
			}

			interfaces.NewOrderHandler(service, reconciler).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := kafkaWriter.Close(); err != nil {
				log.Printf("Error closing kafka writer: %v", err)
			}
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing redis client: %v", err)
			}
		},
	})
}
