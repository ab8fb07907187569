package service

import (
	"context"
	"fmt"
	"log/slog"

	"menteam-auth/internal/events"
	"menteam-auth/internal/model"
	"menteam-auth/internal/password"
	"menteam-auth/internal/repository"
)

// TokenIssuer signs access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type RegisterInput struct {
	UserID   string
	Password string
	RoleIDs  []int64
}

type RegisterResult struct {
	User    *model.User
	Created bool
	Roles   []model.Role
}

type AuthService interface {
	ValidateUser(ctx context.Context, userID, plaintext string) (*model.User, error)
	Login(ctx context.Context, user *model.User) (string, error)
	Authenticate(ctx context.Context, userID, plaintext string) (string, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	DeleteUser(ctx context.Context, userID string) error
}

type authService struct {
	store     repository.Store
	hasher    password.Hasher
	issuer    TokenIssuer
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewAuthService(
	store repository.Store,
	hasher password.Hasher,
	issuer TokenIssuer,
	publisher events.EventPublisher,
	logger *slog.Logger,
) AuthService {
	return &authService{
		store:     store,
		hasher:    hasher,
		issuer:    issuer,
		publisher: publisher,
		logger:    logger,
	}
}

// ValidateUser returns nil, nil when the user is unknown, soft-deleted, or the
// password does not match. Errors are reserved for infrastructure failures.
func (s *authService) ValidateUser(ctx context.Context, userID, plaintext string) (*model.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	ok, err := s.hasher.Verify(plaintext, user.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, user *model.User) (string, error) {
	token, err := s.issuer.Issue(user.UserID)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "User logged in", slog.String("user_id", user.UserID))
	return token, nil
}

func (s *authService) Authenticate(ctx context.Context, userID, plaintext string) (string, error) {
	user, err := s.ValidateUser(ctx, userID, plaintext)
	if err != nil {
		return "", err
	}
	if user == nil {
		s.logger.WarnContext(ctx, "Login rejected", slog.String("user_id", userID))
		return "", ErrInvalidCredentials
	}

	return s.Login(ctx, user)
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	// bcrypt rejects inputs longer than 72 bytes, whatever the rune count.
	if len(in.Password) > maxPasswordBytes {
		return nil, ErrInvalidPassword
	}

	roleIDs, roles, err := resolveRoles(ctx, s.store, in.RoleIDs)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Users().FindByIDWithDeleted(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil && existing.Status() == model.StatusActive {
		return nil, ErrUserAlreadyExists
	}

	plaintext := in.Password
	if plaintext == "" {
		if plaintext, err = password.Generate(); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		var txErr error
		if user, txErr = upsertUser(ctx, tx, existing, in.UserID, hash); txErr != nil {
			return txErr
		}
		return reconcileRoles(ctx, tx, in.UserID, roleIDs)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	created := existing == nil
	s.logger.InfoContext(ctx, "User registered",
		slog.String("user_id", user.UserID),
		slog.Bool("created", created),
		slog.Any("role_ids", roleIDs),
	)
	go s.publisher.PublishUserRegistered(user.UserID, created, roleIDs)

	return &RegisterResult{User: user, Created: created, Roles: roles}, nil
}

func (s *authService) DeleteUser(ctx context.Context, userID string) error {
	deleted, err := s.store.Users().SoftDelete(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return nil
	}

	s.logger.InfoContext(ctx, "User deleted", slog.String("user_id", userID))
	go s.publisher.PublishUserDeleted(userID)

	return nil
}

// upsertUser inserts a new user, or restores a soft-deleted one and overwrites
// its password hash.
func upsertUser(ctx context.Context, store repository.Store, existing *model.User, userID, hash string) (*model.User, error) {
	if existing == nil {
		user := &model.User{UserID: userID, Password: hash}
		if err := store.Users().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	user := *existing
	user.Password = hash
	if err := store.Users().Restore(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to restore user: %w", err)
	}
	return &user, nil
}
