// cmd/job-service/main.go
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"campusmall/internal/pkg/bootstrap"
	"campusmall/internal/pkg/config"
	"campusmall/internal/pkg/httpclient"
	"campusmall/internal/pkg/zookeeper"
	"campusmall/internal/service/job/application"
	"campusmall/internal/service/job/infrastructure"
	"campusmall/internal/service/job/infrastructure/adapter"
	"campusmall/internal/service/job/scheduler"
)

const (
	serviceName = "job-service"
	servicePort = 8084
)

// main 是调度服务的组装根
// 调度循环跑在后台 goroutine，HTTP 端口只承担健康检查和指标暴露
func main() {
	bootstrap.Init(serviceName)
	cfg := config.GetCurrentConfig()

	db, err := infrastructure.OpenMysql(cfg.Infra.Mysql.DSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	logRepo := infrastructure.NewGormJobLogRepository(db)

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
	if err != nil {
		log.Fatalf("failed to connect to zookeeper: %v", err)
	}

	tracer := otel.Tracer(serviceName)
	executor := application.NewExecutor(logRepo, tracer)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())

			httpClient := httpclient.NewClient(tracer, appCtx.Nacos)
			registry := application.NewRegistry(
				adapter.NewOrderJobClient(httpClient),
				adapter.NewProductJobClient(httpClient),
				adapter.NewSystemJobClient(httpClient),
			)

			sched := scheduler.NewScheduler(
				executor,
				registry.BuildEntries(cfg.Jobs),
				func(jobName string) (scheduler.SweepGuard, error) {
					return zookeeper.NewSweepLock(zkConn, jobName)
				},
			)
			go func() {
				if err := sched.Run(schedulerCtx); err != nil {
					log.Fatalf("scheduler stopped with error: %v", err)
				}
			}()
		},
		OnShutdown: func(ctx context.Context) {
			stopScheduler()
			zkConn.Close()
		},
	})
}
