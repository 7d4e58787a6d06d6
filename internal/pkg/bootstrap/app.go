// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"campusmall/internal/pkg/config"
	"campusmall/internal/pkg/logger"
	"campusmall/internal/pkg/nacos"
	"campusmall/internal/pkg/tracing"
)

// AppCtx 传递给各服务的路由注册回调
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo 包含启动一个微服务所需的全部信息
type AppInfo struct {
	ServiceName string
	Port        int
	// RegisterHandlers 允许每个服务注册自己的 HTTP 路由
	RegisterHandlers func(appCtx AppCtx)
	// OnShutdown 在 HTTP 服务器关闭前执行，用于停止后台组件
	OnShutdown func(ctx context.Context)
}

// Init 加载配置并初始化日志，必须在 StartService 之前调用
func Init(serviceName string) {
	logger.Init(serviceName)
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	if _, err := config.Load(configPath); err != nil {
		log.Printf("WARN: could not load config file (%v), falling back to defaults", err)
	}
}

// StartService 封装了所有微服务通用的启动与优雅关停流程
func StartService(info AppInfo) {
	cfg := config.GetCurrentConfig()

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		log.Fatalf("failed to initialize tracer provider: %v", err)
	}

	namingClient, err := nacos.NewNacosClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		log.Fatalf("failed to initialize nacos client: %v", err)
	}

	ip, err := getOutboundIP()
	if err != nil {
		log.Fatalf("failed to get outbound IP address: %v", err)
	}

	if err := namingClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		log.Fatalf("failed to register service with nacos: %v", err)
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		log.Printf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 关停顺序：先摘流量，再停后台组件，最后关服务器
	if err := namingClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		log.Printf("Error deregistering from Nacos: %v", err)
	}

	if info.OnShutdown != nil {
		info.OnShutdown(ctx)
	}

	if err := tp.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down tracer provider: %v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down http server: %v", err)
	}

	log.Printf("Service %s gracefully shut down.", info.ServiceName)
}

// getOutboundIP 获取本机对外通信使用的 IP，用于服务注册
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}
