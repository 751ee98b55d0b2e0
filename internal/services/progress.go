package services

import (
	"math"

	"github.com/sainivas456/TaskFlow-sub000/internal/models"
)

// ComputeProgress derives a task's 0-100 completion percentage from its
// subtasks. With no subtasks the status alone decides: Completed is 100,
// In Progress is 50, anything else is 0. Otherwise it is the completed
// fraction scaled to 100 and rounded half-up.
func ComputeProgress(subtasks []models.Subtask, status models.TaskStatus) int {
	if len(subtasks) == 0 {
		switch status {
		case models.StatusCompleted:
			return 100
		case models.StatusInProgress:
			return 50
		default:
			return 0
		}
	}

	done := 0
	for _, st := range subtasks {
		if st.Completed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(subtasks))))
}
