package service

import (
	"context"
	"errors"
	"time"

	"challenge75/internal/challenge"
	"challenge75/internal/model"
	"challenge75/internal/repository"
)

// ProgressService reconciles submitted day state against the stored
// day records: window validation, rest-day quota transitions, task
// completion upserts, and the derived completeness flag.
type ProgressService struct {
	repo     ProgressRepository
	window   challenge.Window
	notifier FeedNotifier
}

func NewProgressService(repo ProgressRepository, window challenge.Window, notifier FeedNotifier) *ProgressService {
	return &ProgressService{
		repo:     repo,
		window:   window,
		notifier: notifier,
	}
}

// GetDay returns the stored day for (userID, date) together with the
// user's remaining rest days. Dates with no record yield the
// empty-day shape; reads outside the window are allowed for display.
func (s *ProgressService) GetDay(ctx context.Context, userID int64, date time.Time) (*model.Day, int, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}

	day, err := s.repo.GetDay(ctx, userID, challenge.NormalizeDay(date))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.EmptyDay(userID, date), user.RestDaysLeft, nil
		}
		return nil, 0, err
	}

	return day, user.RestDaysLeft, nil
}

// SubmitDay reconciles a full submitted day. A rest-day transition
// and its quota change commit atomically with the day flag; turning
// rest day on writes no task rows in the same call, so the underlying
// checklist survives and is restored when the flag is cleared.
func (s *ProgressService) SubmitDay(ctx context.Context, userID int64, date time.Time, isRestDay bool, workouts map[challenge.TaskKind]WorkoutInput, tasks map[challenge.TaskKind]bool) (*model.Day, int, error) {
	if !s.window.Contains(date) {
		return nil, 0, ErrOutOfWindow
	}
	day := challenge.NormalizeDay(date)

	current, err := s.repo.GetDay(ctx, userID, day)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, 0, err
		}
		current = model.EmptyDay(userID, day)
	}

	quotaDelta := 0
	switch {
	case isRestDay && !current.IsRestDay:
		quotaDelta = -1
	case !isRestDay && current.IsRestDay:
		quotaDelta = 1
	}

	var completions []model.TaskCompletion
	if quotaDelta != -1 {
		completions, err = buildCompletions(workouts, tasks)
		if err != nil {
			return nil, 0, err
		}
	}

	updated, restLeft, err := s.repo.UpsertDay(ctx, userID, day, isRestDay, completions, quotaDelta)
	if err != nil {
		return nil, 0, mapRepoError(err)
	}

	s.notifyIfToday(userID, updated)
	return updated, restLeft, nil
}

// ToggleTask flips exactly one task's completed flag, creating the
// completion (completed=true) on first toggle.
func (s *ProgressService) ToggleTask(ctx context.Context, userID int64, date time.Time, kind challenge.TaskKind) (*model.Day, int, error) {
	if !s.window.Contains(date) {
		return nil, 0, ErrOutOfWindow
	}
	if !challenge.IsValidKind(kind) {
		return nil, 0, ErrUnknownTask
	}

	updated, restLeft, err := s.repo.ToggleDayTask(ctx, userID, challenge.NormalizeDay(date), kind)
	if err != nil {
		return nil, 0, mapRepoError(err)
	}

	s.notifyIfToday(userID, updated)
	return updated, restLeft, nil
}

func buildCompletions(workouts map[challenge.TaskKind]WorkoutInput, tasks map[challenge.TaskKind]bool) ([]model.TaskCompletion, error) {
	var out []model.TaskCompletion

	for kind, w := range workouts {
		if !challenge.IsValidKind(kind) || !challenge.RequiresNotes(kind) {
			return nil, ErrUnknownTask
		}
		out = append(out, model.TaskCompletion{
			Kind:      kind,
			Completed: w.Completed,
			Notes:     w.Notes,
		})
	}

	for kind, completed := range tasks {
		if !challenge.IsValidKind(kind) || challenge.RequiresNotes(kind) {
			return nil, ErrUnknownTask
		}
		out = append(out, model.TaskCompletion{
			Kind:      kind,
			Completed: completed,
		})
	}

	return out, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRestDaysExhausted):
		return ErrQuotaExhausted
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}

func (s *ProgressService) notifyIfToday(userID int64, day *model.Day) {
	if s.notifier == nil {
		return
	}
	if day.Date.Equal(challenge.NormalizeDay(time.Now())) {
		s.notifier.DayUpdated(userID, day)
	}
}
