// internal/service/order/domain/orderno.go
package domain

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const timestampLayout = "20060102150405"

// OrderNoGenerator 生成全局唯一、可读、按时间有序的订单号
// 格式: 14 位时间戳 + 4 位随机数 + 3 位序列号，共 21 位
//
// 序列号在同一时间戳桶内单调递增，时间戳变化时归零；
// 同一桶内超过 1000 次调用时序列号按 1000 取模回绕，
// 可能与桶内更早的号重复 —— 依靠 4 位随机数把碰撞概率压到可接受范围，
// 这是既有约定行为，不做修正
type OrderNoGenerator struct {
	mu        sync.Mutex
	now       func() time.Time
	rand      *rand.Rand
	lastStamp string
	seq       int
}

// NewOrderNoGenerator 创建一个以系统时钟为准的生成器
// 生成器应由单个共享实例持有，计数器不对外暴露
func NewOrderNoGenerator() *OrderNoGenerator {
	return NewOrderNoGeneratorWithClock(time.Now)
}

// NewOrderNoGeneratorWithClock 注入时钟，测试中用来固定时间戳桶
func NewOrderNoGeneratorWithClock(now func() time.Time) *OrderNoGenerator {
	return &OrderNoGenerator{
		now:  now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate 生成一个订单号
// 读时间戳、重置序列、递增序列三步在同一把锁内完成，并发调用安全
func (g *OrderNoGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	stamp := g.now().Format(timestampLayout)
	if stamp != g.lastStamp {
		g.lastStamp = stamp
		g.seq = 0
	} else {
		g.seq = (g.seq + 1) % 1000
	}

	return fmt.Sprintf("%s%04d%03d", stamp, g.rand.Intn(10000), g.seq)
}

// GenerateWithPrefix 生成带业务前缀的订单号，如 "TK-20250901120000xxxx000"
func (g *OrderNoGenerator) GenerateWithPrefix(prefix string) string {
	return prefix + "-" + g.Generate()
}
