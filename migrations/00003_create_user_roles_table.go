package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUserRolesTable, downCreateUserRolesTable)
}

func upCreateUserRolesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE user_roles (
	  user_id TEXT NOT NULL REFERENCES users(user_id),
	  role_id BIGINT NOT NULL REFERENCES roles(role_id),
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  deleted_at TIMESTAMP WITH TIME ZONE,
	  PRIMARY KEY (user_id, role_id)
	);
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateUserRolesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS user_roles;`)
	return err
}
