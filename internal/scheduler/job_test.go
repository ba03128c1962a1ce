package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func result(name string, success bool) JobResult {
	now := time.Now()
	return JobResult{
		JobName:   name,
		StartTime: now,
		EndTime:   now.Add(time.Second),
		Duration:  time.Second,
		Success:   success,
	}
}

func TestJobHistory_AddResult(t *testing.T) {
	history := &JobHistory{}

	history.AddResult(result("job-a", true))
	history.AddResult(result("job-a", false))

	assert.Len(t, history.Results, 2)
	assert.True(t, history.Results[0].Success)
	assert.False(t, history.Results[1].Success)
}

func TestJobHistory_BoundedSize(t *testing.T) {
	history := &JobHistory{}

	for i := 0; i < maxHistoryResults+25; i++ {
		r := result("job-a", true)
		r.Error = fmt.Sprintf("run-%d", i)
		history.AddResult(r)
	}

	assert.Len(t, history.Results, maxHistoryResults)
	// Oldest entries are evicted first
	assert.Equal(t, "run-25", history.Results[0].Error)
	assert.Equal(t, fmt.Sprintf("run-%d", maxHistoryResults+24),
		history.Results[len(history.Results)-1].Error)
}

func TestJobHistory_GetLatestResults(t *testing.T) {
	history := &JobHistory{}
	for i := 0; i < 10; i++ {
		r := result("job-a", true)
		r.Error = fmt.Sprintf("run-%d", i)
		history.AddResult(r)
	}

	latest := history.GetLatestResults(3)
	assert.Len(t, latest, 3)
	assert.Equal(t, "run-7", latest[0].Error)
	assert.Equal(t, "run-9", latest[2].Error)

	assert.Len(t, history.GetLatestResults(100), 10)
	assert.Empty(t, history.GetLatestResults(0))
}
