package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeTaskStats(t *testing.T) {
	t.Parallel()

	past := testNow.Add(-24 * time.Hour)
	future := testNow.Add(24 * time.Hour)
	tasks := []Task{
		{Status: StatusNew, Deadline: past},
		{Status: StatusNew, Deadline: future},
		{Status: StatusInProgress, Deadline: past},
		{Status: StatusCompleted, Deadline: past},
	}

	got := ComputeTaskStats(tasks, testNow)

	assert.Equal(t, TaskStats{Total: 4, New: 2, InProgress: 1, Completed: 1, Overdue: 2}, got)
	assert.Equal(t, TaskStats{}, ComputeTaskStats(nil, testNow))
}
