package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Time
		expected time.Time
	}{
		{
			name:     "UTC midnight unchanged",
			in:       date(2025, 2, 3),
			expected: date(2025, 2, 3),
		},
		{
			name:     "UTC afternoon truncated",
			in:       time.Date(2025, 2, 3, 18, 45, 12, 0, time.UTC),
			expected: date(2025, 2, 3),
		},
		{
			name:     "eastern timezone evening stays on same UTC day",
			in:       time.Date(2025, 2, 3, 23, 30, 0, 0, time.FixedZone("CET", 3600)),
			expected: date(2025, 2, 3),
		},
		{
			name:     "western timezone evening maps forward",
			in:       time.Date(2025, 2, 3, 21, 0, 0, 0, time.FixedZone("PST", -8*3600)),
			expected: date(2025, 2, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDay(tt.in))
		})
	}
}

func TestWindow_DayNumber(t *testing.T) {
	w := NewWindow(date(2025, 2, 3), DurationDays)

	tests := []struct {
		name       string
		in         time.Time
		expectedN  int
		expectedOK bool
	}{
		{"start date is day 1", date(2025, 2, 3), 1, true},
		{"day before start", date(2025, 2, 2), 0, false},
		{"end date is day 75", date(2025, 4, 18), 75, true},
		{"day after end", date(2025, 4, 19), 0, false},
		{"mid-window with time of day", time.Date(2025, 3, 1, 15, 4, 0, 0, time.UTC), 27, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := w.DayNumber(tt.in)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedN, n)
		})
	}
}

func TestWindow_LeapDay(t *testing.T) {
	// Window spanning Feb 29 2024 must not shift indices.
	w := NewWindow(date(2024, 2, 1), DurationDays)

	n, ok := w.DayNumber(date(2024, 2, 29))
	assert.True(t, ok)
	assert.Equal(t, 29, n)

	n, ok = w.DayNumber(date(2024, 3, 1))
	assert.True(t, ok)
	assert.Equal(t, 30, n)

	assert.Equal(t, date(2024, 4, 15), w.End())
}

func TestWindow_RoundTrip(t *testing.T) {
	w := NewWindow(date(2025, 2, 3), DurationDays)

	for d := w.Start; !d.After(w.End()); d = d.AddDate(0, 0, 1) {
		n, ok := w.DayNumber(d)
		assert.True(t, ok)

		back, ok := w.DateForDay(n)
		assert.True(t, ok)
		assert.Equal(t, d, back)
	}

	_, ok := w.DateForDay(0)
	assert.False(t, ok)
	_, ok = w.DateForDay(DurationDays + 1)
	assert.False(t, ok)
}

func TestWindow_ContainsMatchesDayNumber(t *testing.T) {
	w := NewWindow(date(2025, 2, 3), DurationDays)

	for _, d := range []time.Time{
		date(2025, 2, 2), date(2025, 2, 3), date(2025, 3, 15),
		date(2025, 4, 18), date(2025, 4, 19), date(2026, 1, 1),
	} {
		_, ok := w.DayNumber(d)
		assert.Equal(t, w.Contains(d), ok, d.Format("2006-01-02"))
	}
}

func TestCatalog(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 7)
	assert.Equal(t, TaskWorkout1, kinds[0])
	assert.Equal(t, TaskWorkout2, kinds[1])

	for _, spec := range Tasks() {
		assert.True(t, IsValidKind(spec.Kind))
		assert.NotEmpty(t, spec.Label)
		if spec.Kind == TaskWorkout1 || spec.Kind == TaskWorkout2 {
			assert.True(t, spec.RequiresNotes)
		} else {
			assert.False(t, spec.RequiresNotes)
		}
	}

	assert.False(t, IsValidKind("COLD_SHOWER"))
	assert.False(t, RequiresNotes(TaskReading))
}
