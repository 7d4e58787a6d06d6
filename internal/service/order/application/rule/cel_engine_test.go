package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_EvalCancelRule(t *testing.T) {
	engine, err := NewEngine("status == 0 && ageMinutes >= threshold")
	require.NoError(t, err)

	matched, err := engine.Eval(map[string]interface{}{
		"status": 0, "ageMinutes": 31, "threshold": 30,
	})
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = engine.Eval(map[string]interface{}{
		"status": 0, "ageMinutes": 10, "threshold": 30,
	})
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestNewEngine_RejectsBadSyntax(t *testing.T) {
	_, err := NewEngine("status === 0")
	require.Error(t, err)
}

func TestEngine_LockerRule(t *testing.T) {
	engine, err := NewEngine("holdsLocker && ageHours >= threshold")
	require.NoError(t, err)

	matched, err := engine.Eval(map[string]interface{}{
		"holdsLocker": true, "ageHours": 25, "threshold": 24,
	})
	require.NoError(t, err)
	assert.True(t, matched)
}
