package service

import (
	"context"
	"errors"
	"time"

	"challenge75/internal/challenge"
	"challenge75/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already registered")
	ErrOutOfWindow    = errors.New("date is outside the challenge window")
	ErrQuotaExhausted = errors.New("no rest days left")
	ErrUnknownTask    = errors.New("unknown task kind")
)

type Service struct {
	*UserService
	*ProgressService
	*FeedService
}

func NewService(userService *UserService, progressService *ProgressService, feedService *FeedService) *Service {
	return &Service{
		UserService:     userService,
		ProgressService: progressService,
		FeedService:     feedService,
	}
}

// WorkoutInput is a workout task's submitted state: completion plus
// the free-text description the workout kinds carry.
type WorkoutInput struct {
	Completed bool
	Notes     *string
}

type ProgressServiceI interface {
	GetDay(ctx context.Context, userID int64, date time.Time) (*model.Day, int, error)
	SubmitDay(ctx context.Context, userID int64, date time.Time, isRestDay bool, workouts map[challenge.TaskKind]WorkoutInput, tasks map[challenge.TaskKind]bool) (*model.Day, int, error)
	ToggleTask(ctx context.Context, userID int64, date time.Time, kind challenge.TaskKind) (*model.Day, int, error)
}

type ProgressRepository interface {
	GetDay(ctx context.Context, userID int64, date time.Time) (*model.Day, error)
	UpsertDay(ctx context.Context, userID int64, date time.Time, isRestDay bool, completions []model.TaskCompletion, quotaDelta int) (*model.Day, int, error)
	ToggleDayTask(ctx context.Context, userID int64, date time.Time, kind challenge.TaskKind) (*model.Day, int, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

type FeedServiceI interface {
	SnapshotToday(ctx context.Context) ([]model.FeedEntry, error)
}

type FeedRepository interface {
	GetTodayFeed(ctx context.Context, date time.Time) ([]model.FeedEntry, error)
}

// FeedNotifier receives day records as they change so live feed
// consumers see updates without polling. Implementations must not
// block the mutating request.
type FeedNotifier interface {
	DayUpdated(userID int64, day *model.Day)
}

type UserServiceI interface {
	Register(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	Delete(ctx context.Context, telegramID int64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	DeleteUser(ctx context.Context, telegramID int64) error
}
