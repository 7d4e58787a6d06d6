// internal/pkg/config/config.go
package config

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 是整个平台共享的配置结构，由 YAML 文件加载，环境变量覆盖关键字段
type Config struct {
	App   AppConfig   `yaml:"app"`
	Infra InfraConfig `yaml:"infra"`
	Order OrderConfig `yaml:"order"`
	Jobs  []JobConfig `yaml:"jobs"`
}

type AppConfig struct {
	Env string `yaml:"env"` // dev / test / prod
}

type InfraConfig struct {
	Mysql     MysqlConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Jaeger    JaegerConfig    `yaml:"jaeger"`
	Nacos     NacosConfig     `yaml:"nacos"`
	Zookeeper ZookeeperConfig `yaml:"zookeeper"`
}

type MysqlConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	OrderEventTopic string   `yaml:"orderEventTopic"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type NacosConfig struct {
	ServerAddrs string `yaml:"serverAddrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

type ZookeeperConfig struct {
	Servers []string `yaml:"servers"`
}

// OrderConfig 聚合了订单超时对账相关的所有阈值
// 这些值驱动 TimeoutReconciler 的规则，绝不允许硬编码在业务代码里
type OrderConfig struct {
	PaymentTimeoutMinutes int             `yaml:"paymentTimeoutMinutes"` // 超过该分钟数未支付则自动取消
	AutoConfirmDays       int             `yaml:"autoConfirmDays"`       // 超过该天数未确认收货则自动完成
	LockerTimeoutHours    int             `yaml:"lockerTimeoutHours"`    // 取餐柜占用超过该小时数则强制释放
	StockWarningThreshold int             `yaml:"stockWarningThreshold"` // 库存预警阈值
	LogRetentionDays      int             `yaml:"logRetentionDays"`      // 系统日志保留天数
	Rules                 []ReconcileRule `yaml:"rules"`
}

// ReconcileRule 是一条配置化的对账规则，Expression 为 CEL 表达式
// 表达式的求值对象是订单事实 (status / ageMinutes / ageDays 等字段)
type ReconcileRule struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// JobConfig 描述调度表中的一项定时任务
type JobConfig struct {
	Name     string   `yaml:"name"`
	Group    string   `yaml:"group"`
	Interval Duration `yaml:"interval"`
	Params   string   `yaml:"params"`
}

// Duration 让 YAML 里可以写 "30s" / "5m" 这类人类可读的时长
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std 转回标准库类型
func (d Duration) Std() time.Duration { return time.Duration(d) }

var current atomic.Pointer[Config]

// Load 从文件加载配置并设置为当前配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	applyEnvOverrides(cfg)
	current.Store(cfg)
	return cfg, nil
}

// GetCurrentConfig 返回当前生效的配置
// 未显式 Load 时返回内置默认值，保证测试无需配置文件即可运行
func GetCurrentConfig() *Config {
	if c := current.Load(); c != nil {
		return c
	}
	cfg := defaultConfig()
	current.Store(cfg)
	return cfg
}

// Set 直接替换当前配置，主要供测试和热更新使用
func Set(cfg *Config) {
	current.Store(cfg)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{Env: "dev"},
		Infra: InfraConfig{
			Mysql:     MysqlConfig{DSN: "root:root@tcp(localhost:3306)/campusmall?charset=utf8mb4&parseTime=True&loc=Local"},
			Redis:     RedisConfig{Addr: "localhost:6379"},
			Kafka:     KafkaConfig{Brokers: []string{"localhost:9092"}, OrderEventTopic: "order-status-events"},
			Jaeger:    JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
			Nacos:     NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
			Zookeeper: ZookeeperConfig{Servers: []string{"localhost:2181"}},
		},
		Order: OrderConfig{
			PaymentTimeoutMinutes: 30,
			AutoConfirmDays:       7,
			LockerTimeoutHours:    24,
			StockWarningThreshold: 10,
			LogRetentionDays:      30,
		},
	}
}

// applyEnvOverrides 用环境变量覆盖部署相关的字段，容器环境下不依赖改文件
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.Mysql.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Infra.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Infra.Nacos.Group = v
	}
}
