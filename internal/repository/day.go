package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"challenge75/internal/challenge"
	"challenge75/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Day struct {
	ID         uuid.UUID `db:"id"`
	UserID     int64     `db:"user_telegram_id"`
	Date       time.Time `db:"date"`
	IsRestDay  bool      `db:"is_rest_day"`
	IsComplete bool      `db:"is_complete"`
}

type TaskCompletion struct {
	ID        uuid.UUID `db:"id"`
	DayID     uuid.UUID `db:"day_id"`
	TaskKind  string    `db:"task_kind"`
	Completed bool      `db:"completed"`
	Notes     *string   `db:"notes"`
}

// GetDay loads the day row and its completions for (userID, date).
// date must already be a normalized UTC day. Returns ErrNotFound when
// no row exists; callers map that to the empty-day shape.
func (r *Repository) GetDay(ctx context.Context, userID int64, date time.Time) (*model.Day, error) {
	var day Day
	query, args, err := squirrel.
		Select("id", "user_telegram_id", "date", "is_rest_day", "is_complete").
		From("days").
		Where(squirrel.Eq{"user_telegram_id": userID, "date": date}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &day, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	completions, err := r.getCompletions(ctx, r.db, day.ID)
	if err != nil {
		return nil, err
	}

	return dayToModel(day, completions), nil
}

// errRestDayUnchanged marks a rest-day transition that a concurrent
// request already applied; the losing transaction rolls its quota
// change back and the caller serves the current state instead.
var errRestDayUnchanged = errors.New("rest day flag already in desired state")

// UpsertDay applies one reconciled day mutation as a single
// transaction: the rest-day quota delta, the day row's flags, and the
// given completion upserts either all commit or none do. The quota
// decrement carries its own rest_days_left > 0 guard, and the flag
// flip only matches a row whose flag actually changes, so the counter
// can neither go negative nor move without the flag moving with it.
// is_complete is re-derived inside the transaction from the rows
// actually in the database, never from a client-supplied value.
// Returns the materialized day and the user's remaining rest days.
func (r *Repository) UpsertDay(ctx context.Context, userID int64, date time.Time, isRestDay bool, completions []model.TaskCompletion, quotaDelta int) (*model.Day, int, error) {
	var (
		out      *model.Day
		restLeft int
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var dayID uuid.UUID
		var err error

		switch quotaDelta {
		case -1:
			if err := r.decrementRestDaysTx(ctx, tx, userID); err != nil {
				return err
			}
			dayID, err = setRestDayTx(ctx, tx, userID, date, true)
		case 1:
			if err := r.incrementRestDaysTx(ctx, tx, userID); err != nil {
				return err
			}
			dayID, err = setRestDayTx(ctx, tx, userID, date, false)
		case 0:
			if _, err := r.getUserWithTx(ctx, tx, userID); err != nil {
				return err
			}
			dayID, err = upsertDayRowKeepFlagsTx(ctx, tx, userID, date)
		default:
			return fmt.Errorf("unexpected quota delta %d", quotaDelta)
		}
		if err != nil {
			return err
		}

		for _, c := range completions {
			if err := upsertCompletionTx(ctx, tx, dayID, c); err != nil {
				return err
			}
		}

		day, err := r.finalizeDayTx(ctx, tx, dayID)
		if err != nil {
			return err
		}

		user, err := r.getUserWithTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		out = day
		restLeft = user.RestDaysLeft
		return nil
	})
	if errors.Is(err, errRestDayUnchanged) {
		return r.currentDayState(ctx, userID, date)
	}
	if err != nil {
		return nil, 0, err
	}

	return out, restLeft, nil
}

// currentDayState serves the committed state after a duplicate
// rest-day transition lost the race but found the day already as
// requested.
func (r *Repository) currentDayState(ctx context.Context, userID int64, date time.Time) (*model.Day, int, error) {
	day, err := r.GetDay(ctx, userID, date)
	if err != nil {
		return nil, 0, err
	}
	user, err := r.GetUserByTelegramID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return day, user.RestDaysLeft, nil
}

// ToggleDayTask flips one completion's completed flag, creating the
// day row and the completion (completed=true) when absent. The flip
// happens in SQL so two racing toggles cannot both read the same
// prior value.
func (r *Repository) ToggleDayTask(ctx context.Context, userID int64, date time.Time, kind challenge.TaskKind) (*model.Day, int, error) {
	var (
		out      *model.Day
		restLeft int
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.getUserWithTx(ctx, tx, userID); err != nil {
			return err
		}

		dayID, err := upsertDayRowKeepFlagsTx(ctx, tx, userID, date)
		if err != nil {
			return err
		}

		query, args, err := squirrel.
			Insert("task_completions").
			SetMap(map[string]interface{}{
				"id":        uuid.New(),
				"day_id":    dayID,
				"task_kind": string(kind),
				"completed": true,
			}).
			Suffix("ON CONFLICT (day_id, task_kind) DO UPDATE SET completed = NOT task_completions.completed").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		day, err := r.finalizeDayTx(ctx, tx, dayID)
		if err != nil {
			return err
		}

		user, err := r.getUserWithTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		out = day
		restLeft = user.RestDaysLeft
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return out, restLeft, nil
}

// setRestDayTx writes the rest-day flag, creating the row when
// absent. The conflict update only matches a row whose flag actually
// flips; a row already in the desired state yields no row and
// errRestDayUnchanged, which aborts the surrounding transaction so
// the quota change is undone with it.
func setRestDayTx(ctx context.Context, tx *sqlx.Tx, userID int64, date time.Time, desired bool) (uuid.UUID, error) {
	query, args, err := squirrel.
		Insert("days").
		SetMap(map[string]interface{}{
			"id":               uuid.New(),
			"user_telegram_id": userID,
			"date":             date,
			"is_rest_day":      desired,
			"is_complete":      false,
		}).
		Suffix("ON CONFLICT (user_telegram_id, date) DO UPDATE SET is_rest_day = excluded.is_rest_day WHERE days.is_rest_day IS DISTINCT FROM excluded.is_rest_day RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var dayID uuid.UUID
	if err := tx.GetContext(ctx, &dayID, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, errRestDayUnchanged
		}
		return uuid.Nil, err
	}
	return dayID, nil
}

// upsertDayRowKeepFlagsTx creates the day row lazily but leaves an
// existing row's rest-day flag alone. The no-op DO UPDATE makes
// RETURNING yield the id on the conflict path too.
func upsertDayRowKeepFlagsTx(ctx context.Context, tx *sqlx.Tx, userID int64, date time.Time) (uuid.UUID, error) {
	query, args, err := squirrel.
		Insert("days").
		SetMap(map[string]interface{}{
			"id":               uuid.New(),
			"user_telegram_id": userID,
			"date":             date,
			"is_rest_day":      false,
			"is_complete":      false,
		}).
		Suffix("ON CONFLICT (user_telegram_id, date) DO UPDATE SET date = excluded.date RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var dayID uuid.UUID
	if err := tx.GetContext(ctx, &dayID, query, args...); err != nil {
		return uuid.Nil, err
	}
	return dayID, nil
}

func upsertCompletionTx(ctx context.Context, tx *sqlx.Tx, dayID uuid.UUID, c model.TaskCompletion) error {
	query, args, err := squirrel.
		Insert("task_completions").
		SetMap(map[string]interface{}{
			"id":        uuid.New(),
			"day_id":    dayID,
			"task_kind": string(c.Kind),
			"completed": c.Completed,
			"notes":     c.Notes,
		}).
		Suffix("ON CONFLICT (day_id, task_kind) DO UPDATE SET completed = excluded.completed, notes = excluded.notes").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// finalizeDayTx re-derives is_complete from the completion rows now
// in the transaction, persists it, and returns the materialized day.
func (r *Repository) finalizeDayTx(ctx context.Context, tx *sqlx.Tx, dayID uuid.UUID) (*model.Day, error) {
	var day Day
	query, args, err := squirrel.
		Select("id", "user_telegram_id", "date", "is_rest_day", "is_complete").
		From("days").
		Where(squirrel.Eq{"id": dayID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	if err := tx.GetContext(ctx, &day, query, args...); err != nil {
		return nil, err
	}

	completions, err := r.getCompletions(ctx, tx, dayID)
	if err != nil {
		return nil, err
	}

	out := dayToModel(day, completions)
	out.RecomputeComplete()

	if out.IsComplete != day.IsComplete {
		query, args, err := squirrel.
			Update("days").
			Set("is_complete", out.IsComplete).
			Where(squirrel.Eq{"id": dayID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *Repository) getCompletions(ctx context.Context, q sqlx.QueryerContext, dayID uuid.UUID) ([]TaskCompletion, error) {
	query, args, err := squirrel.
		Select("id", "day_id", "task_kind", "completed", "notes").
		From("task_completions").
		Where(squirrel.Eq{"day_id": dayID}).
		OrderBy("task_kind").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var completions []TaskCompletion
	if err := sqlx.SelectContext(ctx, q, &completions, query, args...); err != nil {
		return nil, err
	}
	return completions, nil
}

func dayToModel(day Day, completions []TaskCompletion) *model.Day {
	out := &model.Day{
		ID:         day.ID,
		UserID:     day.UserID,
		Date:       day.Date.UTC(),
		IsRestDay:  day.IsRestDay,
		IsComplete: day.IsComplete,
	}
	for _, c := range completions {
		out.Completions = append(out.Completions, model.TaskCompletion{
			ID:        c.ID,
			DayID:     c.DayID,
			Kind:      challenge.TaskKind(c.TaskKind),
			Completed: c.Completed,
			Notes:     c.Notes,
		})
	}
	return out
}
