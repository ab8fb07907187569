package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"menteam-auth/internal/model"
)

type RoleRepository interface {
	FindByIDs(ctx context.Context, roleIDs []int64) ([]model.Role, error)
}

type postgresRoleRepository struct {
	db sqlx.ExtContext
}

func (r *postgresRoleRepository) FindByIDs(ctx context.Context, roleIDs []int64) ([]model.Role, error) {
	if len(roleIDs) == 0 {
		return []model.Role{}, nil
	}

	query, args, err := sqlx.In(`SELECT role_id, role_name FROM roles WHERE role_id IN (?) ORDER BY role_id`, roleIDs)
	if err != nil {
		return nil, err
	}

	roles := []model.Role{}
	if err := sqlx.SelectContext(ctx, r.db, &roles, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return roles, nil
}
