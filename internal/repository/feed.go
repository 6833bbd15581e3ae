package repository

import (
	"context"
	"time"

	"challenge75/internal/challenge"
	"challenge75/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type feedRow struct {
	UserID      int64          `db:"telegram_id"`
	DisplayName string         `db:"display_name"`
	DayID       *uuid.UUID     `db:"day_id"`
	Date        *time.Time     `db:"date"`
	IsRestDay   *bool          `db:"is_rest_day"`
	IsComplete  *bool          `db:"is_complete"`
	TaskKinds   pq.StringArray `db:"task_kinds"`
	TaskDone    pq.BoolArray   `db:"task_done"`
	TaskNotes   pq.StringArray `db:"task_notes"`
}

// GetTodayFeed returns every user's day record for the given
// normalized date in one query, nil Day for users with no row yet.
// Completions are folded in with array_agg so the feed never issues
// per-user lookups.
func (r *Repository) GetTodayFeed(ctx context.Context, date time.Time) ([]model.FeedEntry, error) {
	query, args, err := squirrel.Select(
		"u.telegram_id",
		"u.display_name",
		"d.id AS day_id",
		"d.date",
		"d.is_rest_day",
		"d.is_complete",
		"array_agg(tc.task_kind) FILTER (WHERE tc.task_kind IS NOT NULL) AS task_kinds",
		"array_agg(tc.completed) FILTER (WHERE tc.task_kind IS NOT NULL) AS task_done",
		"array_agg(COALESCE(tc.notes, '')) FILTER (WHERE tc.task_kind IS NOT NULL) AS task_notes",
	).
		From("users u").
		LeftJoin("days d ON d.user_telegram_id = u.telegram_id AND d.date = ?", date).
		LeftJoin("task_completions tc ON tc.day_id = d.id").
		GroupBy("u.telegram_id", "u.display_name", "d.id", "d.date", "d.is_rest_day", "d.is_complete").
		OrderBy("u.telegram_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []feedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	entries := make([]model.FeedEntry, 0, len(rows))
	for _, row := range rows {
		entry := model.FeedEntry{
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
		}

		if row.DayID != nil {
			day := &model.Day{
				ID:         *row.DayID,
				UserID:     row.UserID,
				Date:       row.Date.UTC(),
				IsRestDay:  *row.IsRestDay,
				IsComplete: *row.IsComplete,
			}
			for i, kind := range row.TaskKinds {
				c := model.TaskCompletion{
					DayID:     day.ID,
					Kind:      challenge.TaskKind(kind),
					Completed: row.TaskDone[i],
				}
				if notes := row.TaskNotes[i]; notes != "" {
					c.Notes = &notes
				}
				day.Completions = append(day.Completions, c)
			}
			entry.Day = day
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
