package api

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"menteam-auth/internal/service"
)

type SlackHandler struct {
	slackService service.SlackService
	validate     *validator.Validate
	logger       *slog.Logger
}

func NewSlackHandler(slackService service.SlackService, logger *slog.Logger) *SlackHandler {
	return &SlackHandler{
		slackService: slackService,
		validate:     validator.New(),
		logger:       logger,
	}
}

type AuthTestRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type UserInfoRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (h *SlackHandler) AuthorizeURI(c *fiber.Ctx) error {
	url, err := h.slackService.AuthorizeURL(c.Params("type"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{"url": url})
}

func (h *SlackHandler) Alignment(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return writeError(c, ErrCodeTokenInvalid, err.Error())
	}

	result, err := h.slackService.Link(c.UserContext(), service.LinkInput{
		Code:        c.Params("code"),
		Intent:      service.IntentAlignment,
		ActorUserID: userID,
	})
	recordAuthAttempt("slack_alignment", err)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(result)
}

func (h *SlackHandler) Signup(c *fiber.Ctx) error {
	result, err := h.slackService.Link(c.UserContext(), service.LinkInput{
		Code:   c.Params("code"),
		Intent: service.IntentSignup,
	})
	recordAuthAttempt("slack_signup", err)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(result)
}

func (h *SlackHandler) OAuthAccess(c *fiber.Ctx) error {
	access, err := h.slackService.Exchange(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(access)
}

func (h *SlackHandler) AuthTest(c *fiber.Ctx) error {
	var request AuthTestRequest
	if ok, err := parseBody(c, h.validate, &request); !ok {
		return err
	}

	result, err := h.slackService.AuthTest(c.UserContext(), request.AccessToken)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(result)
}

func (h *SlackHandler) UsersInfo(c *fiber.Ctx) error {
	var request UserInfoRequest
	if ok, err := parseBody(c, h.validate, &request); !ok {
		return err
	}

	info, err := h.slackService.UserInfo(c.UserContext(), request.UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(info)
}
