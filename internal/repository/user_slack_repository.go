package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"menteam-auth/internal/model"
)

type UserSlackRepository interface {
	FindByUserIDWithDeleted(ctx context.Context, userID string) (*model.UserSlack, error)
	// FindActiveByUserID returns nil when no linked, non-deleted record exists.
	FindActiveByUserID(ctx context.Context, userID string) (*model.UserSlack, error)
	Create(ctx context.Context, link *model.UserSlack) error
	// Restore clears the deletion marker and overwrites the Slack attributes.
	Restore(ctx context.Context, link *model.UserSlack) error
}

type postgresUserSlackRepository struct {
	db sqlx.ExtContext
}

const userSlackColumns = `user_id, slack_id, team_id, name, email, real_name, is_custom_image,
	image_24, image_32, image_48, image_72, image_192, image_512, created_at, updated_at, deleted_at`

func (r *postgresUserSlackRepository) FindByUserIDWithDeleted(ctx context.Context, userID string) (*model.UserSlack, error) {
	return r.findOne(ctx, `SELECT `+userSlackColumns+` FROM user_slacks WHERE user_id = $1`, userID)
}

func (r *postgresUserSlackRepository) FindActiveByUserID(ctx context.Context, userID string) (*model.UserSlack, error) {
	return r.findOne(ctx, `SELECT `+userSlackColumns+` FROM user_slacks WHERE user_id = $1 AND deleted_at IS NULL`, userID)
}

func (r *postgresUserSlackRepository) findOne(ctx context.Context, query, userID string) (*model.UserSlack, error) {
	var link model.UserSlack
	err := sqlx.GetContext(ctx, r.db, &link, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *postgresUserSlackRepository) Create(ctx context.Context, link *model.UserSlack) error {
	query := `
		INSERT INTO user_slacks (user_id, slack_id, team_id, name, email, real_name, is_custom_image,
			image_24, image_32, image_48, image_72, image_192, image_512)
		VALUES (:user_id, :slack_id, :team_id, :name, :email, :real_name, :is_custom_image,
			:image_24, :image_32, :image_48, :image_72, :image_192, :image_512)
	`
	_, err := sqlx.NamedExecContext(ctx, r.db, query, link)
	return err
}

func (r *postgresUserSlackRepository) Restore(ctx context.Context, link *model.UserSlack) error {
	query := `
		UPDATE user_slacks
		SET slack_id = :slack_id, team_id = :team_id, name = :name, email = :email, real_name = :real_name,
			is_custom_image = :is_custom_image, image_24 = :image_24, image_32 = :image_32, image_48 = :image_48,
			image_72 = :image_72, image_192 = :image_192, image_512 = :image_512,
			deleted_at = NULL, updated_at = now()
		WHERE user_id = :user_id
	`
	_, err := sqlx.NamedExecContext(ctx, r.db, query, link)
	if err != nil {
		return err
	}

	link.DeletedAt = nil
	return nil
}
