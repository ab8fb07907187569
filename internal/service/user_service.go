package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"menteam-auth/internal/model"
	"menteam-auth/internal/repository"
)

// AvatarStorage issues upload URLs for profile images.
type AvatarStorage interface {
	PresignUpload(ctx context.Context, objectKey string) (string, error)
	ObjectURL(objectKey string) string
}

type Me struct {
	UserID    string             `json:"userId"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Roles     []model.Role       `json:"roles"`
	Profile   *model.UserProfile `json:"profile,omitempty"`
	Slack     *model.UserSlack   `json:"slack,omitempty"`
}

type UpdateProfileInput struct {
	DisplayName *string
	Profile     *string
	Image       *string
}

type AvatarUpload struct {
	UploadURL     string `json:"upload_url"`
	FinalImageURL string `json:"final_image_url"`
}

type UserService interface {
	GetMe(ctx context.Context, userID string) (*Me, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.UserProfile, error)
	AvatarUploadURL(ctx context.Context, userID string) (*AvatarUpload, error)
}

type userService struct {
	store   repository.Store
	avatars AvatarStorage
	logger  *slog.Logger
}

func NewUserService(store repository.Store, avatars AvatarStorage, logger *slog.Logger) UserService {
	return &userService{store: store, avatars: avatars, logger: logger}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*Me, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.store.UserRoles().FindActiveRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	profile, err := s.store.Profiles().FindByUserIDWithDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	if profile != nil && profile.Status() != model.StatusActive {
		profile = nil
	}

	link, err := s.store.Slacks().FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slack link: %w", err)
	}

	return &Me{
		UserID:    user.UserID,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Roles:     roles,
		Profile:   profile,
		Slack:     link,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.UserProfile, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}

	profile := &model.UserProfile{
		UserID:      userID,
		DisplayName: in.DisplayName,
		Profile:     in.Profile,
		Image:       in.Image,
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return upsertProfile(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User profile updated", slog.String("user_id", userID))
	return profile, nil
}

func (s *userService) AvatarUploadURL(ctx context.Context, userID string) (*AvatarUpload, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}

	objectKey := "user-avatars/" + url.PathEscape(userID) + "/" + uuid.NewString() + ".jpg"

	uploadURL, err := s.avatars.PresignUpload(ctx, objectKey)
	if err != nil {
		return nil, err
	}

	return &AvatarUpload{
		UploadURL:     uploadURL,
		FinalImageURL: s.avatars.ObjectURL(objectKey),
	}, nil
}

func (s *userService) activeUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
