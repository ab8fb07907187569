package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"menteam-auth/internal/model"
)

type UserProfileRepository interface {
	FindByUserIDWithDeleted(ctx context.Context, userID string) (*model.UserProfile, error)
	Create(ctx context.Context, profile *model.UserProfile) error
	// Restore clears the deletion marker and overwrites the profile fields.
	Restore(ctx context.Context, profile *model.UserProfile) error
}

type postgresUserProfileRepository struct {
	db sqlx.ExtContext
}

func (r *postgresUserProfileRepository) FindByUserIDWithDeleted(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	query := `SELECT user_id, display_name, profile, image, created_at, updated_at, deleted_at FROM user_profiles WHERE user_id = $1`
	err := sqlx.GetContext(ctx, r.db, &profile, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *postgresUserProfileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, display_name, profile, image)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query, profile.UserID, profile.DisplayName, profile.Profile, profile.Image).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *postgresUserProfileRepository) Restore(ctx context.Context, profile *model.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET display_name = $2, profile = $3, image = $4, deleted_at = NULL, updated_at = now()
		WHERE user_id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, profile.UserID, profile.DisplayName, profile.Profile, profile.Image).
		Scan(&profile.UpdatedAt)
	if err != nil {
		return err
	}

	profile.DeletedAt = nil
	return nil
}
