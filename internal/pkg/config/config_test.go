// internal/pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesJobsAndRules(t *testing.T) {
	path := writeTempConfig(t, `
order:
  paymentTimeoutMinutes: 45
  rules:
    - name: cancel_timeout
      expression: "status == 0 && ageMinutes >= threshold"
jobs:
  - name: cancelTimeoutOrders
    group: order
    interval: 90s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Order.PaymentTimeoutMinutes)
	// 未覆盖的字段保留默认值
	assert.Equal(t, 7, cfg.Order.AutoConfirmDays)

	require.Len(t, cfg.Jobs, 1)
	assert.Equal(t, "cancelTimeoutOrders", cfg.Jobs[0].Name)
	assert.Equal(t, 90*time.Second, cfg.Jobs[0].Interval.Std())

	require.Len(t, cfg.Order.Rules, 1)
	assert.Equal(t, "cancel_timeout", cfg.Order.Rules[0].Name)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	path := writeTempConfig(t, `
jobs:
  - name: cancelTimeoutOrders
    interval: every-other-tuesday
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("MYSQL_DSN", "user:pw@tcp(db:3306)/campusmall")
	path := writeTempConfig(t, `
infra:
  mysql:
    dsn: "from-file"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "user:pw@tcp(db:3306)/campusmall", cfg.Infra.Mysql.DSN)
}

func TestGetCurrentConfigFallsBackToDefaults(t *testing.T) {
	current.Store(nil)
	cfg := GetCurrentConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, 30, cfg.Order.PaymentTimeoutMinutes)
	assert.NotEmpty(t, cfg.Infra.Kafka.OrderEventTopic)
}
