package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store groups the credential repositories so that a multi-table mutation can
// run against a single transaction.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	UserRoles() UserRoleRepository
	Profiles() UserProfileRepository
	Slacks() UserSlackRepository

	// WithTx runs fn against a Store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise. Calling WithTx on a
	// Store that is already transactional reuses the open transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type postgresStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
	tx bool
}

func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{db: db, q: db}
}

func (s *postgresStore) Users() UserRepository {
	return &postgresUserRepository{db: s.q}
}

func (s *postgresStore) Roles() RoleRepository {
	return &postgresRoleRepository{db: s.q}
}

func (s *postgresStore) UserRoles() UserRoleRepository {
	return &postgresUserRoleRepository{db: s.q}
}

func (s *postgresStore) Profiles() UserProfileRepository {
	return &postgresUserProfileRepository{db: s.q}
}

func (s *postgresStore) Slacks() UserSlackRepository {
	return &postgresUserSlackRepository{db: s.q}
}

func (s *postgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.tx {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&postgresStore{db: s.db, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
