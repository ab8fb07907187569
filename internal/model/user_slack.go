package model

import "time"

// UserSlack links a local user to a Slack workspace identity.
type UserSlack struct {
	UserID        string     `db:"user_id" json:"userId"`
	SlackID       string     `db:"slack_id" json:"slackId"`
	TeamID        string     `db:"team_id" json:"teamId"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	RealName      *string    `db:"real_name" json:"realName,omitempty"`
	IsCustomImage bool       `db:"is_custom_image" json:"isCustomImage"`
	Image24       *string    `db:"image_24" json:"image24,omitempty"`
	Image32       *string    `db:"image_32" json:"image32,omitempty"`
	Image48       *string    `db:"image_48" json:"image48,omitempty"`
	Image72       *string    `db:"image_72" json:"image72,omitempty"`
	Image192      *string    `db:"image_192" json:"image192,omitempty"`
	Image512      *string    `db:"image_512" json:"image512,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt     *time.Time `db:"deleted_at" json:"-"`
}

func (s *UserSlack) Status() RecordStatus {
	return statusOf(s.DeletedAt)
}
