// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局的 zerolog 实例，所有包都通过 Ctx() 间接使用它
var Logger zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 在服务启动时调用，为全局日志附加服务名字段
func Init(serviceName string) {
	level := zerolog.InfoLevel
	if lv, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lv != zerolog.NoLevel {
		level = lv
	}
	Logger = zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回一个携带当前 TraceID/SpanID 的 logger
// 业务代码里统一使用 logger.Ctx(ctx).Info()... 的写法，保证日志可以与链路关联
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
