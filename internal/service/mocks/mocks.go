package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"challenge75/internal/challenge"
	"challenge75/internal/model"
)

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetDay(ctx context.Context, userID int64, date time.Time) (*model.Day, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockProgressRepository) UpsertDay(ctx context.Context, userID int64, date time.Time, isRestDay bool, completions []model.TaskCompletion, quotaDelta int) (*model.Day, int, error) {
	args := m.Called(ctx, userID, date, isRestDay, completions, quotaDelta)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*model.Day), args.Int(1), args.Error(2)
}

func (m *MockProgressRepository) ToggleDayTask(ctx context.Context, userID int64, date time.Time, kind challenge.TaskKind) (*model.Day, int, error) {
	args := m.Called(ctx, userID, date, kind)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*model.Day), args.Int(1), args.Error(2)
}

func (m *MockProgressRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

type MockFeedRepository struct {
	mock.Mock
}

func (m *MockFeedRepository) GetTodayFeed(ctx context.Context, date time.Time) ([]model.FeedEntry, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FeedEntry), args.Error(1)
}

type MockFeedNotifier struct {
	mock.Mock
}

func (m *MockFeedNotifier) DayUpdated(userID int64, day *model.Day) {
	m.Called(userID, day)
}
