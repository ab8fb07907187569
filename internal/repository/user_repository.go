package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"menteam-auth/internal/model"
)

type UserRepository interface {
	// FindByID returns the active user, or nil when none exists.
	FindByID(ctx context.Context, userID string) (*model.User, error)
	// FindByIDWithDeleted also returns soft-deleted users.
	FindByIDWithDeleted(ctx context.Context, userID string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	// Restore clears the deletion marker and overwrites the password.
	Restore(ctx context.Context, user *model.User) error
	SoftDelete(ctx context.Context, userID string) (bool, error)
}

type postgresUserRepository struct {
	db sqlx.ExtContext
}

func (r *postgresUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	query := `SELECT user_id, password, created_at, updated_at, deleted_at FROM users WHERE user_id = $1 AND deleted_at IS NULL`
	err := sqlx.GetContext(ctx, r.db, &user, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByIDWithDeleted(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	query := `SELECT user_id, password, created_at, updated_at, deleted_at FROM users WHERE user_id = $1`
	err := sqlx.GetContext(ctx, r.db, &user, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (user_id, password) VALUES ($1, $2) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, user.UserID, user.Password).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *postgresUserRepository) Restore(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET deleted_at = NULL, password = $2, updated_at = now() WHERE user_id = $1 RETURNING updated_at`
	if err := r.db.QueryRowxContext(ctx, query, user.UserID, user.Password).Scan(&user.UpdatedAt); err != nil {
		return err
	}

	user.DeletedAt = nil
	return nil
}

func (r *postgresUserRepository) SoftDelete(ctx context.Context, userID string) (bool, error) {
	query := `UPDATE users SET deleted_at = now(), updated_at = now() WHERE user_id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
