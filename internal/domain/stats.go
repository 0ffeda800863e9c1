package domain

import "time"

// TaskStats summarizes a user's tasks by status.
type TaskStats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// ComputeTaskStats counts tasks in memory. The PostgreSQL store computes the
// same figures with a single aggregate query.
func ComputeTaskStats(tasks []Task, now time.Time) TaskStats {
	var s TaskStats
	for i := range tasks {
		s.Total++
		switch tasks[i].Status {
		case StatusNew:
			s.New++
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		}
		if tasks[i].IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
