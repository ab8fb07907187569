package repository

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"menteam-auth/internal/model"
	_ "menteam-auth/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type StoreIntegrationTestSuite struct {
	suite.Suite
	db    *sqlx.DB
	store Store
	pgc   *postgres.PostgresContainer
	ctx   context.Context
}

func (s *StoreIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgc, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %s", err)
	}
	s.pgc = pgc

	connStr, err := pgc.ConnectionString(s.ctx, "sslmode=disable")
	assert.NoError(s.T(), err)

	db, err := sqlx.Connect("pgx", connStr)
	assert.NoError(s.T(), err)
	s.db = db

	assert.NoError(s.T(), goose.SetDialect("postgres"))
	err = goose.Up(db.DB, "../../migrations")
	assert.NoError(s.T(), err)

	s.store = NewPostgresStore(s.db)
}

func (s *StoreIntegrationTestSuite) TearDownSuite() {
	s.db.Close()
	if err := s.pgc.Terminate(s.ctx); err != nil {
		log.Fatalf("failed to terminate pg container: %s", err)
	}
}

func (s *StoreIntegrationTestSuite) TestUserLifecycle_CreateSoftDeleteRestore() {
	// Arrange
	userID := "integration@test.com"
	user := &model.User{UserID: userID, Password: "hashed_password"}

	// Act: Create new user
	err := s.store.Users().Create(s.ctx, user)
	assert.NoError(s.T(), err)

	// Act: Soft delete
	deleted, err := s.store.Users().SoftDelete(s.ctx, userID)
	assert.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	// Assert: Not visible as active, still visible with deleted
	active, err := s.store.Users().FindByID(s.ctx, userID)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), active)

	found, err := s.store.Users().FindByIDWithDeleted(s.ctx, userID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), model.StatusDeleted, found.Status())

	// Act: Restore keeps the original creation time
	revived := &model.User{UserID: userID, Password: "new_hash", UpdatedAt: found.UpdatedAt, DeletedAt: found.DeletedAt}
	err = s.store.Users().Restore(s.ctx, revived)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), revived.DeletedAt)
	assert.False(s.T(), revived.UpdatedAt.Before(found.UpdatedAt))

	restored, err := s.store.Users().FindByID(s.ctx, userID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "new_hash", restored.Password)
	assert.True(s.T(), restored.CreatedAt.Equal(user.CreatedAt))
}

func (s *StoreIntegrationTestSuite) TestUserRoles_RestoreBeforeInsert() {
	userID := "roles@test.com"
	assert.NoError(s.T(), s.store.Users().Create(s.ctx, &model.User{UserID: userID, Password: "x"}))

	err := s.store.WithTx(s.ctx, func(tx Store) error {
		if err := tx.UserRoles().Create(s.ctx, userID, []int64{1, 2}); err != nil {
			return err
		}
		if err := tx.UserRoles().SoftDelete(s.ctx, userID, []int64{1, 2}); err != nil {
			return err
		}
		return tx.UserRoles().Restore(s.ctx, userID, []int64{2})
	})
	assert.NoError(s.T(), err)

	roles, err := s.store.UserRoles().FindActiveRoles(s.ctx, userID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []model.Role{{RoleID: 2, RoleName: "user"}}, roles)
}

func TestStoreIntegration(t *testing.T) {
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("Docker is not available, skipping integration test.")
	}
	suite.Run(t, new(StoreIntegrationTestSuite))
}
