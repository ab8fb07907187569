package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateRolesTable, downCreateRolesTable)
}

func upCreateRolesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE roles (
			role_id BIGSERIAL PRIMARY KEY,
			role_name TEXT NOT NULL UNIQUE
		);
	`)
	if err != nil {
		return err
	}

	// Seed data roles
	_, err = tx.ExecContext(ctx, `
		INSERT INTO roles (role_name) VALUES
		('admin'),
		('user'),
		('guest');
	`)
	return err
}

func downCreateRolesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS roles;`)
	return err
}
