package services_test

import (
	"testing"

	"github.com/sainivas456/TaskFlow-sub000/internal/models"
	"github.com/sainivas456/TaskFlow-sub000/internal/services"

	"github.com/stretchr/testify/assert"
)

func subtasks(completed ...bool) []models.Subtask {
	out := make([]models.Subtask, len(completed))
	for i, c := range completed {
		out[i] = models.Subtask{Completed: c}
	}
	return out
}

func TestComputeProgress_NoSubtasks(t *testing.T) {
	assert.Equal(t, 100, services.ComputeProgress(nil, models.StatusCompleted))
	assert.Equal(t, 50, services.ComputeProgress(nil, models.StatusInProgress))
	assert.Equal(t, 0, services.ComputeProgress(nil, models.StatusPending))
	assert.Equal(t, 0, services.ComputeProgress(nil, models.StatusOverdue))
	assert.Equal(t, 0, services.ComputeProgress([]models.Subtask{}, models.StatusPending))
}

func TestComputeProgress_RoundsHalfUp(t *testing.T) {
	// 2 of 3 done is 66.67, rounds to 67 regardless of status.
	for _, status := range []models.TaskStatus{
		models.StatusPending, models.StatusInProgress, models.StatusCompleted, models.StatusOverdue,
	} {
		assert.Equal(t, 67, services.ComputeProgress(subtasks(true, false, true), status))
	}

	// 1 of 2 done is exactly 50.
	assert.Equal(t, 50, services.ComputeProgress(subtasks(true, false), models.StatusPending))

	// 1 of 8 done is 12.5, half rounds up to 13.
	assert.Equal(t, 13, services.ComputeProgress(subtasks(true, false, false, false, false, false, false, false), models.StatusPending))
}

func TestComputeProgress_Bounds(t *testing.T) {
	cases := [][]models.Subtask{
		subtasks(),
		subtasks(false),
		subtasks(true),
		subtasks(true, true, true),
		subtasks(false, false, false, false, false),
		subtasks(true, false, true, false, true, false, true),
	}
	for _, set := range cases {
		for _, status := range []models.TaskStatus{
			models.StatusPending, models.StatusInProgress, models.StatusCompleted, models.StatusOverdue,
		} {
			p := services.ComputeProgress(set, status)
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
		}
	}
}

func TestComputeProgress_AllOrNothing(t *testing.T) {
	assert.Equal(t, 100, services.ComputeProgress(subtasks(true, true, true, true), models.StatusPending))
	assert.Equal(t, 0, services.ComputeProgress(subtasks(false, false), models.StatusCompleted))
}
