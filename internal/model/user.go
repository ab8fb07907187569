package model

import (
	"time"
)

// User is the root aggregate. UserID is the identity key and doubles as the
// user's email address.
type User struct {
	UserID    string     `db:"user_id"`
	Password  string     `db:"password"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (u *User) Status() RecordStatus {
	return statusOf(u.DeletedAt)
}
