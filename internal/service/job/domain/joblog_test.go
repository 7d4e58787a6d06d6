// internal/service/job/domain/joblog_test.go
package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobLogFinishSuccess(t *testing.T) {
	start := time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC)
	log := NewJobLog("cleanSystemLogs", "system", "retentionDays=30", start)
	assert.NotEmpty(t, log.RunID)

	log.Finish(start.Add(1500*time.Millisecond), "cleaned=42", nil)

	assert.Equal(t, JobStatusSuccess, log.Status)
	assert.Equal(t, int64(1500), log.ExecuteTime)
	assert.Equal(t, "cleaned=42", log.Result)
	assert.Empty(t, log.Error)
}

func TestJobLogFinishFailure(t *testing.T) {
	start := time.Now()
	log := NewJobLog("executeStatistics", "system", "", start)

	log.Finish(start.Add(time.Second), "partial output", fmt.Errorf("downstream timeout"))

	assert.Equal(t, JobStatusFailed, log.Status)
	assert.Equal(t, "downstream timeout", log.Error)
	// 失败的执行不保留结果摘要
	assert.Empty(t, log.Result)
}

func TestJobLogRunIDsAreUnique(t *testing.T) {
	a := NewJobLog("x", "g", "", time.Now())
	b := NewJobLog("x", "g", "", time.Now())
	assert.NotEqual(t, a.RunID, b.RunID)
}
