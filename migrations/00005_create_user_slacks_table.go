package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUserSlacksTable, downCreateUserSlacksTable)
}

func upCreateUserSlacksTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE user_slacks (
	  user_id TEXT PRIMARY KEY REFERENCES users(user_id),
	  slack_id TEXT NOT NULL,
	  team_id TEXT NOT NULL,
	  name TEXT NOT NULL,
	  email TEXT NOT NULL,
	  real_name TEXT,
	  is_custom_image BOOLEAN NOT NULL DEFAULT false,
	  image_24 TEXT,
	  image_32 TEXT,
	  image_48 TEXT,
	  image_72 TEXT,
	  image_192 TEXT,
	  image_512 TEXT,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  deleted_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX idx_user_slacks_slack_id ON user_slacks (slack_id);
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateUserSlacksTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS user_slacks;`)
	return err
}
