package degrade

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_ReturnsValueOnSuccess(t *testing.T) {
	got := Invoke(context.Background(), "product-service", func(ctx context.Context) (int, error) {
		return 42, nil
	}, 0)
	assert.Equal(t, 42, got)
}

func TestInvoke_ReturnsFallbackOnFailure(t *testing.T) {
	got := Invoke(context.Background(), "product-service", func(ctx context.Context) (int, error) {
		return 0, errors.New("connection refused")
	}, 7)
	assert.Equal(t, 7, got)
}

func TestInvoke_NeverPropagatesError(t *testing.T) {
	require.NotPanics(t, func() {
		got := Invoke(context.Background(), "system-service", func(ctx context.Context) (bool, error) {
			panicErr := errors.New("downstream 503")
			return false, panicErr
		}, false)
		assert.False(t, got)
	})
}

func TestInvokeTagged_MarksDegradation(t *testing.T) {
	_, degraded := InvokeTagged(context.Background(), "product-service", func(ctx context.Context) (int, error) {
		return 0, errors.New("timeout")
	}, 0)
	assert.True(t, degraded)

	got, degraded := InvokeTagged(context.Background(), "product-service", func(ctx context.Context) (int, error) {
		return 0, nil
	}, 99)
	assert.False(t, degraded)
	assert.Equal(t, 0, got, "a legitimate zero result must not be replaced by the fallback")
}
