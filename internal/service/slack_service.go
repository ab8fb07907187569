package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"menteam-auth/internal/events"
	"menteam-auth/internal/model"
	"menteam-auth/internal/password"
	"menteam-auth/internal/repository"
	"menteam-auth/internal/slack"
)

type Intent string

const (
	IntentAlignment Intent = "alignment"
	IntentSignup    Intent = "signup"
)

const (
	msgAligned = "Slack account aligned"
	msgSignup  = "Signup completed"
)

func ParseIntent(s string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alignment", "align":
		return IntentAlignment, nil
	case "signup":
		return IntentSignup, nil
	}
	return "", ErrInvalidIntent
}

// SlackProvider is the subset of the Slack Web API the linker depends on.
type SlackProvider interface {
	AuthCodeURL(redirectURI string) string
	Exchange(ctx context.Context, code, redirectURI string) (*slack.Access, error)
	UserInfo(ctx context.Context, slackUserID string) (*slack.User, error)
	AuthTest(ctx context.Context, accessToken string) (*slack.AuthTestResult, error)
}

type SlackOptions struct {
	AlignmentRedirectURI string
	SignupRedirectURI    string
	SignupDomains        []string
	DefaultRoleIDs       []int64
}

type LinkInput struct {
	Code   string
	Intent Intent
	// ActorUserID is the authenticated caller for alignment. Empty skips the
	// ownership check.
	ActorUserID string
}

// LinkResult is returned to the caller once. Password is only set for signup.
type LinkResult struct {
	UserID   string `json:"-"`
	Message  string `json:"message"`
	Password string `json:"password,omitempty"`
}

type SlackService interface {
	AuthorizeURL(intent string) (string, error)
	Link(ctx context.Context, in LinkInput) (*LinkResult, error)
	Exchange(ctx context.Context, code string) (*slack.Access, error)
	AuthTest(ctx context.Context, accessToken string) (*slack.AuthTestResult, error)
	UserInfo(ctx context.Context, slackUserID string) (*slack.User, error)
}

type slackService struct {
	provider  SlackProvider
	store     repository.Store
	hasher    password.Hasher
	publisher events.EventPublisher
	logger    *slog.Logger
	opts      SlackOptions
	domains   map[string]struct{}
}

func NewSlackService(
	provider SlackProvider,
	store repository.Store,
	hasher password.Hasher,
	publisher events.EventPublisher,
	logger *slog.Logger,
	opts SlackOptions,
) SlackService {
	domains := make(map[string]struct{}, len(opts.SignupDomains))
	for _, d := range opts.SignupDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			domains[d] = struct{}{}
		}
	}

	return &slackService{
		provider:  provider,
		store:     store,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		domains:   domains,
	}
}

func (s *slackService) AuthorizeURL(intent string) (string, error) {
	parsed, err := ParseIntent(intent)
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(s.redirectFor(parsed)), nil
}

func (s *slackService) redirectFor(intent Intent) string {
	if intent == IntentSignup {
		return s.opts.SignupRedirectURI
	}
	return s.opts.AlignmentRedirectURI
}

func (s *slackService) Link(ctx context.Context, in LinkInput) (*LinkResult, error) {
	if in.Intent != IntentAlignment && in.Intent != IntentSignup {
		return nil, ErrInvalidIntent
	}

	access, err := s.provider.Exchange(ctx, in.Code, s.redirectFor(in.Intent))
	if err != nil {
		s.logger.WarnContext(ctx, "Slack code exchange failed", slog.String("intent", string(in.Intent)), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessCode, err)
	}

	info, err := s.provider.UserInfo(ctx, access.AuthedUserID)
	if err != nil {
		s.logger.WarnContext(ctx, "Slack profile fetch failed", slog.String("slack_id", access.AuthedUserID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}

	userID := strings.TrimSpace(info.Profile.Email)
	if userID == "" {
		return nil, ErrEmailRequired
	}

	var existing *model.User
	switch in.Intent {
	case IntentSignup:
		if !s.domainAllowed(userID) {
			s.logger.WarnContext(ctx, "Signup rejected for domain", slog.String("user_id", userID))
			return nil, ErrUnauthorizedDomain
		}
		if existing, err = s.store.Users().FindByIDWithDeleted(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	case IntentAlignment:
		if in.ActorUserID != "" && in.ActorUserID != userID {
			return nil, ErrIdentityMismatch
		}
		if existing, err = s.store.Users().FindByID(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		if existing == nil {
			return nil, ErrUserNotFound
		}
	}

	result := &LinkResult{UserID: userID, Message: msgAligned}
	var hash string
	if in.Intent == IntentSignup {
		plaintext, err := password.Generate()
		if err != nil {
			return nil, err
		}
		if hash, err = s.hasher.Hash(plaintext); err != nil {
			return nil, err
		}
		result.Message = msgSignup
		result.Password = plaintext
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		roleIDs, _, err := resolveRoles(ctx, tx, s.opts.DefaultRoleIDs)
		if err != nil {
			return fmt.Errorf("default role set: %w", err)
		}

		if in.Intent == IntentSignup {
			if _, err := upsertUser(ctx, tx, existing, userID, hash); err != nil {
				return err
			}
			if err := upsertProfile(ctx, tx, profileFromSlack(userID, info)); err != nil {
				return err
			}
		}

		if err := upsertSlack(ctx, tx, slackRecordFrom(userID, access, info)); err != nil {
			return err
		}

		return reconcileRoles(ctx, tx, userID, roleIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Slack account linked",
		slog.String("user_id", userID),
		slog.String("slack_id", info.ID),
		slog.String("intent", string(in.Intent)),
	)
	go s.publisher.PublishSlackLinked(userID, info.ID, string(in.Intent))

	return result, nil
}

func (s *slackService) Exchange(ctx context.Context, code string) (*slack.Access, error) {
	access, err := s.provider.Exchange(ctx, code, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessCode, err)
	}
	return access, nil
}

func (s *slackService) AuthTest(ctx context.Context, accessToken string) (*slack.AuthTestResult, error) {
	res, err := s.provider.AuthTest(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessCode, err)
	}
	return res, nil
}

func (s *slackService) UserInfo(ctx context.Context, slackUserID string) (*slack.User, error) {
	info, err := s.provider.UserInfo(ctx, slackUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	return info, nil
}

func (s *slackService) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	_, ok := s.domains[strings.ToLower(email[at+1:])]
	return ok
}

func profileFromSlack(userID string, info *slack.User) *model.UserProfile {
	return &model.UserProfile{
		UserID:      userID,
		DisplayName: nullable(info.Profile.DisplayName),
		Image:       nullable(info.Profile.Image512),
	}
}

func slackRecordFrom(userID string, access *slack.Access, info *slack.User) *model.UserSlack {
	teamID := info.TeamID
	if teamID == "" {
		teamID = access.TeamID
	}

	return &model.UserSlack{
		UserID:        userID,
		SlackID:       info.ID,
		TeamID:        teamID,
		Name:          info.Name,
		Email:         info.Profile.Email,
		RealName:      nullable(firstNonEmpty(info.RealName, info.Profile.RealName)),
		IsCustomImage: info.Profile.IsCustomImage,
		Image24:       nullable(info.Profile.Image24),
		Image32:       nullable(info.Profile.Image32),
		Image48:       nullable(info.Profile.Image48),
		Image72:       nullable(info.Profile.Image72),
		Image192:      nullable(info.Profile.Image192),
		Image512:      nullable(info.Profile.Image512),
	}
}

// upsertProfile creates the profile or restores the existing row. Fields left
// nil on profile keep their stored value.
func upsertProfile(ctx context.Context, store repository.Store, profile *model.UserProfile) error {
	existing, err := store.Profiles().FindByUserIDWithDeleted(ctx, profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to find user profile: %w", err)
	}

	if existing == nil {
		if err := store.Profiles().Create(ctx, profile); err != nil {
			return fmt.Errorf("failed to create user profile: %w", err)
		}
		return nil
	}

	if profile.DisplayName == nil {
		profile.DisplayName = existing.DisplayName
	}
	if profile.Profile == nil {
		profile.Profile = existing.Profile
	}
	if profile.Image == nil {
		profile.Image = existing.Image
	}
	profile.CreatedAt = existing.CreatedAt
	if err := store.Profiles().Restore(ctx, profile); err != nil {
		return fmt.Errorf("failed to restore user profile: %w", err)
	}
	return nil
}

func upsertSlack(ctx context.Context, store repository.Store, link *model.UserSlack) error {
	existing, err := store.Slacks().FindByUserIDWithDeleted(ctx, link.UserID)
	if err != nil {
		return fmt.Errorf("failed to find slack link: %w", err)
	}

	if existing == nil {
		if err := store.Slacks().Create(ctx, link); err != nil {
			return fmt.Errorf("failed to create slack link: %w", err)
		}
		return nil
	}

	if err := store.Slacks().Restore(ctx, link); err != nil {
		return fmt.Errorf("failed to restore slack link: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
