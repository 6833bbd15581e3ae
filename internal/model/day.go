package model

import (
	"time"

	"github.com/google/uuid"

	"challenge75/internal/challenge"
)

// TaskCompletion is one task's state within a day. Rows are owned by
// their parent Day and only ever written through the progress service.
type TaskCompletion struct {
	ID        uuid.UUID
	DayID     uuid.UUID
	Kind      challenge.TaskKind
	Completed bool
	Notes     *string
}

// Day is the per-user, per-date record of rest-day status and task
// completions. Date is always a UTC midnight. IsComplete is derived
// from IsRestDay and Completions but persisted so feed and streak
// queries never re-derive it from completion rows.
type Day struct {
	ID          uuid.UUID
	UserID      int64
	Date        time.Time
	IsRestDay   bool
	IsComplete  bool
	Completions []TaskCompletion
}

// EmptyDay is the well-defined shape returned for a date with no
// persisted record: not a rest day, every task incomplete. The zero
// ID marks it as never written.
func EmptyDay(userID int64, date time.Time) *Day {
	return &Day{
		UserID: userID,
		Date:   challenge.NormalizeDay(date),
	}
}

// Completion returns the day's completion for kind, or nil.
func (d *Day) Completion(kind challenge.TaskKind) *TaskCompletion {
	for i := range d.Completions {
		if d.Completions[i].Kind == kind {
			return &d.Completions[i]
		}
	}
	return nil
}

// AllTasksDone reports whether every catalog kind has a completed
// completion, ignoring the rest-day flag.
func (d *Day) AllTasksDone() bool {
	for _, kind := range challenge.Kinds() {
		c := d.Completion(kind)
		if c == nil || !c.Completed {
			return false
		}
	}
	return true
}

// RecomputeComplete re-derives IsComplete: a rest day is always
// complete, otherwise every task in the catalog must be done.
func (d *Day) RecomputeComplete() {
	if d.IsRestDay {
		d.IsComplete = true
		return
	}
	d.IsComplete = d.AllTasksDone()
}

// FeedEntry is one user's row in the cross-user "today" snapshot.
// Day is nil when the user has no record yet for today, which is
// distinct from an empty-but-created record or a rest day.
type FeedEntry struct {
	UserID      int64
	DisplayName string
	AvatarURL   string
	Day         *Day
}
