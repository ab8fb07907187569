package model

import "time"

type UserProfile struct {
	UserID      string     `db:"user_id" json:"userId"`
	DisplayName *string    `db:"display_name" json:"displayName,omitempty"`
	Profile     *string    `db:"profile" json:"profile,omitempty"`
	Image       *string    `db:"image" json:"image,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

func (p *UserProfile) Status() RecordStatus {
	return statusOf(p.DeletedAt)
}
