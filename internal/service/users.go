package service

import (
	"context"
	"errors"
	"fmt"

	"challenge75/internal/model"
	"challenge75/internal/repository"
)

type UserService struct {
	repo            UserRepository
	initialRestDays int
}

func NewUserService(repo UserRepository, initialRestDays int) *UserService {
	return &UserService{
		repo:            repo,
		initialRestDays: initialRestDays,
	}
}

// Register creates the user with the full rest-day quota. Quota is
// only ever mutated afterwards through rest-day transitions.
func (s *UserService) Register(ctx context.Context, user *model.User) error {
	user.RestDaysLeft = s.initialRestDays
	err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", err)
	}
	return user, nil
}

// Delete removes the user's account. Day records and task completions
// cascade away in storage; the rest-day quota is discarded.
func (s *UserService) Delete(ctx context.Context, telegramID int64) error {
	err := s.repo.DeleteUser(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
