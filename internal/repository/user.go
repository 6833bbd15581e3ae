package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"challenge75/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type User struct {
	TelegramID       int64     `db:"telegram_id"`
	Username         string    `db:"username"`
	DisplayName      string    `db:"display_name"`
	RestDaysLeft     int       `db:"rest_days_left"`
	RegistrationDate time.Time `db:"registration_date"`
	AuthDate         time.Time `db:"last_auth_date"`
}

func (u User) toModel() *model.User {
	return &model.User{
		TelegramID:       u.TelegramID,
		Username:         u.Username,
		DisplayName:      u.DisplayName,
		RestDaysLeft:     u.RestDaysLeft,
		RegistrationDate: u.RegistrationDate,
		AuthDate:         u.AuthDate,
	}
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id":       user.TelegramID,
			"username":          user.Username,
			"display_name":      user.DisplayName,
			"rest_days_left":    user.RestDaysLeft,
			"registration_date": user.RegistrationDate,
			"last_auth_date":    user.AuthDate,
		}).
		Suffix("ON CONFLICT (telegram_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyExists
	}

	return nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) getUserWithTx(ctx context.Context, tx *sqlx.Tx, telegramID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

// DeleteUser removes the user row; days and task completions go with
// it through the ON DELETE CASCADE foreign keys. Quota state is
// discarded with the row.
func (r *Repository) DeleteUser(ctx context.Context, telegramID int64) error {
	query, args, err := squirrel.
		Delete("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// decrementRestDaysTx spends one rest day. The WHERE clause carries
// the quota check so that two racing requests cannot both decrement
// past zero: the loser matches no row and gets ErrRestDaysExhausted.
func (r *Repository) decrementRestDaysTx(ctx context.Context, tx *sqlx.Tx, telegramID int64) error {
	query, args, err := squirrel.
		Update("users").
		Set("rest_days_left", squirrel.Expr("rest_days_left - 1")).
		Where(squirrel.And{
			squirrel.Eq{"telegram_id": telegramID},
			squirrel.Gt{"rest_days_left": 0},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.getUserWithTx(ctx, tx, telegramID); err != nil {
			return err
		}
		return ErrRestDaysExhausted
	}

	return nil
}

func (r *Repository) incrementRestDaysTx(ctx context.Context, tx *sqlx.Tx, telegramID int64) error {
	query, args, err := squirrel.
		Update("users").
		Set("rest_days_left", squirrel.Expr("rest_days_left + 1")).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
