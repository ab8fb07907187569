package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidCredentials = errors.New("invalid userId or password")
	ErrUserAlreadyExists  = errors.New("user already exists with this userId")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRoleIDs     = errors.New("invalid roleIds")
	ErrInvalidPassword    = errors.New("password must be at most 72 bytes")

	ErrInvalidIntent      = errors.New("invalid type for authorization URL")
	ErrInvalidAccessCode  = errors.New("invalid access code")
	ErrProfileFetchFailed = errors.New("failed to fetch user info")
	ErrEmailRequired      = errors.New("email is required")
	ErrUnauthorizedDomain = errors.New("unauthorized email domain")
	ErrIdentityMismatch   = errors.New("slack account belongs to a different user")
)

const pgUniqueViolation = "23505"

const maxPasswordBytes = 72

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
