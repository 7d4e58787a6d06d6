// internal/service/job/application/registry_test.go
package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmall/internal/pkg/config"
)

type fakeOrderClient struct {
	cancelArg  int
	confirmArg int
	releaseArg int
}

func (c *fakeOrderClient) CancelTimeoutOrders(_ context.Context, minutes int) int {
	c.cancelArg = minutes
	return 3
}

func (c *fakeOrderClient) ConfirmTimeoutOrders(_ context.Context, days int) int {
	c.confirmArg = days
	return 2
}

func (c *fakeOrderClient) ReleaseTimeoutLockers(_ context.Context, hours int) int {
	c.releaseArg = hours
	return 1
}

type fakeProductClient struct {
	thresholdArg int
}

func (c *fakeProductClient) CheckStockWarning(_ context.Context, threshold int) int {
	c.thresholdArg = threshold
	return 5
}

type fakeSystemClient struct {
	statsOK bool
}

func (c *fakeSystemClient) CleanSystemLogs(_ context.Context, _ int) int { return 12 }
func (c *fakeSystemClient) ExecuteStatistics(_ context.Context, _ string) bool { return c.statsOK }

func testRegistry(statsOK bool) (*Registry, *fakeOrderClient, *fakeProductClient) {
	order := &fakeOrderClient{}
	product := &fakeProductClient{}
	return NewRegistry(order, product, &fakeSystemClient{statsOK: statsOK}), order, product
}

func TestRegistryResolvesSweepJobsWithConfiguredThresholds(t *testing.T) {
	cfg := config.GetCurrentConfig()
	cfg.Order.PaymentTimeoutMinutes = 45
	cfg.Order.AutoConfirmDays = 10
	cfg.Order.LockerTimeoutHours = 12
	config.Set(cfg)

	r, order, _ := testRegistry(true)

	fn, ok := r.Resolve(JobCancelTimeoutOrders)
	require.True(t, ok)
	result, err := fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cancelled=3", result)
	assert.Equal(t, 45, order.cancelArg)

	fn, ok = r.Resolve(JobConfirmTimeoutOrders)
	require.True(t, ok)
	result, err = fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "confirmed=2", result)
	assert.Equal(t, 10, order.confirmArg)

	fn, ok = r.Resolve(JobReleaseTimeoutLocker)
	require.True(t, ok)
	result, err = fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "released=1", result)
	assert.Equal(t, 12, order.releaseArg)
}

func TestRegistryStatisticsFailureBecomesJobError(t *testing.T) {
	r, _, _ := testRegistry(false)

	fn, ok := r.Resolve(JobExecuteStatistics)
	require.True(t, ok)
	_, err := fn(context.Background())
	assert.Error(t, err)
}

func TestRegistryUnknownJobName(t *testing.T) {
	r, _, _ := testRegistry(true)
	_, ok := r.Resolve("defragmentMoon")
	assert.False(t, ok)
}

func TestBuildEntriesSkipsUnknownNames(t *testing.T) {
	r, _, _ := testRegistry(true)
	entries := r.BuildEntries([]config.JobConfig{
		{Name: JobCheckStockWarning, Group: "product", Interval: config.Duration(time.Minute)},
		{Name: "defragmentMoon", Group: "misc", Interval: config.Duration(time.Second)},
		{Name: JobCleanSystemLogs, Group: "system", Interval: config.Duration(time.Hour)},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, JobCheckStockWarning, entries[0].Name)
	assert.Equal(t, JobCleanSystemLogs, entries[1].Name)
	assert.Equal(t, time.Hour, entries[1].Interval)
}
