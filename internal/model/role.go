package model

import "time"

type Role struct {
	RoleID   int64  `db:"role_id" json:"roleId"`
	RoleName string `db:"role_name" json:"roleName"`
}

type UserRole struct {
	UserID    string     `db:"user_id"`
	RoleID    int64      `db:"role_id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (r *UserRole) Status() RecordStatus {
	return statusOf(r.DeletedAt)
}
