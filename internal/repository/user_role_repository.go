package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"menteam-auth/internal/model"
)

type UserRoleRepository interface {
	// FindByUserID returns every link for the user, soft-deleted ones included.
	FindByUserID(ctx context.Context, userID string) ([]model.UserRole, error)
	FindActiveRoles(ctx context.Context, userID string) ([]model.Role, error)
	SoftDelete(ctx context.Context, userID string, roleIDs []int64) error
	Restore(ctx context.Context, userID string, roleIDs []int64) error
	Create(ctx context.Context, userID string, roleIDs []int64) error
}

type postgresUserRoleRepository struct {
	db sqlx.ExtContext
}

func (r *postgresUserRoleRepository) FindByUserID(ctx context.Context, userID string) ([]model.UserRole, error) {
	links := []model.UserRole{}
	query := `SELECT user_id, role_id, created_at, updated_at, deleted_at FROM user_roles WHERE user_id = $1 ORDER BY role_id`
	if err := sqlx.SelectContext(ctx, r.db, &links, query, userID); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *postgresUserRoleRepository) FindActiveRoles(ctx context.Context, userID string) ([]model.Role, error) {
	roles := []model.Role{}
	query := `
		SELECT r.role_id, r.role_name
		FROM user_roles ur
		JOIN roles r ON r.role_id = ur.role_id
		WHERE ur.user_id = $1 AND ur.deleted_at IS NULL
		ORDER BY r.role_id
	`
	if err := sqlx.SelectContext(ctx, r.db, &roles, query, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *postgresUserRoleRepository) SoftDelete(ctx context.Context, userID string, roleIDs []int64) error {
	return r.execForRoles(ctx,
		`UPDATE user_roles SET deleted_at = now(), updated_at = now() WHERE user_id = ? AND role_id IN (?) AND deleted_at IS NULL`,
		userID, roleIDs)
}

func (r *postgresUserRoleRepository) Restore(ctx context.Context, userID string, roleIDs []int64) error {
	return r.execForRoles(ctx,
		`UPDATE user_roles SET deleted_at = NULL, updated_at = now() WHERE user_id = ? AND role_id IN (?)`,
		userID, roleIDs)
}

func (r *postgresUserRoleRepository) Create(ctx context.Context, userID string, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}

	links := make([]model.UserRole, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		links = append(links, model.UserRole{UserID: userID, RoleID: roleID})
	}

	_, err := sqlx.NamedExecContext(ctx, r.db, `INSERT INTO user_roles (user_id, role_id) VALUES (:user_id, :role_id)`, links)
	return err
}

func (r *postgresUserRoleRepository) execForRoles(ctx context.Context, query, userID string, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(query, userID, roleIDs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
