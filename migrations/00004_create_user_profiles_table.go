package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUserProfilesTable, downCreateUserProfilesTable)
}

func upCreateUserProfilesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE user_profiles (
	  user_id TEXT PRIMARY KEY REFERENCES users(user_id),
	  display_name TEXT,
	  profile TEXT,
	  image TEXT,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  deleted_at TIMESTAMP WITH TIME ZONE
	);
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateUserProfilesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS user_profiles;`)
	return err
}
