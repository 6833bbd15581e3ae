package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"challenge75/internal/challenge"
)

func dayWithCompletions(completed map[challenge.TaskKind]bool) *Day {
	d := EmptyDay(1, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	for kind, done := range completed {
		d.Completions = append(d.Completions, TaskCompletion{Kind: kind, Completed: done})
	}
	return d
}

func allDone() map[challenge.TaskKind]bool {
	m := make(map[challenge.TaskKind]bool)
	for _, kind := range challenge.Kinds() {
		m[kind] = true
	}
	return m
}

func TestDay_RecomputeComplete(t *testing.T) {
	tests := []struct {
		name     string
		day      *Day
		expected bool
	}{
		{
			name:     "empty day is incomplete",
			day:      EmptyDay(1, time.Now()),
			expected: false,
		},
		{
			name:     "all tasks done",
			day:      dayWithCompletions(allDone()),
			expected: true,
		},
		{
			name: "one task missing",
			day: func() *Day {
				m := allDone()
				delete(m, challenge.TaskWorkout2)
				return dayWithCompletions(m)
			}(),
			expected: false,
		},
		{
			name: "one task present but unchecked",
			day: func() *Day {
				m := allDone()
				m[challenge.TaskWorkout2] = false
				return dayWithCompletions(m)
			}(),
			expected: false,
		},
		{
			name: "rest day forces complete with no tasks",
			day: func() *Day {
				d := EmptyDay(1, time.Now())
				d.IsRestDay = true
				return d
			}(),
			expected: true,
		},
		{
			name: "rest day forces complete over unchecked tasks",
			day: func() *Day {
				m := allDone()
				m[challenge.TaskReading] = false
				d := dayWithCompletions(m)
				d.IsRestDay = true
				return d
			}(),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.day.RecomputeComplete()
			assert.Equal(t, tt.expected, tt.day.IsComplete)
		})
	}
}

func TestDay_RestDayOverlayPreservesTasks(t *testing.T) {
	m := allDone()
	m[challenge.TaskSleepGoal] = false
	d := dayWithCompletions(m)

	d.IsRestDay = true
	d.RecomputeComplete()
	assert.True(t, d.IsComplete)
	assert.Len(t, d.Completions, 7)

	// Un-marking rest day recomputes from the preserved task state.
	d.IsRestDay = false
	d.RecomputeComplete()
	assert.False(t, d.IsComplete)
}

func TestEmptyDay(t *testing.T) {
	d := EmptyDay(42, time.Date(2025, 2, 10, 16, 30, 0, 0, time.UTC))

	assert.Equal(t, int64(42), d.UserID)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), d.Date)
	assert.False(t, d.IsRestDay)
	assert.False(t, d.IsComplete)
	assert.Empty(t, d.Completions)
	assert.Nil(t, d.Completion(challenge.TaskWorkout1))
}
