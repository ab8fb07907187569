package api

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"menteam-auth/internal/service"
)

type UserHandler struct {
	userService service.UserService
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
		logger:      logger,
	}
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	Profile     *string `json:"profile" validate:"omitempty,max=2000"`
	Image       *string `json:"image" validate:"omitempty,url"`
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return writeError(c, ErrCodeTokenInvalid, err.Error())
	}

	me, err := h.userService.GetMe(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(me)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return writeError(c, ErrCodeTokenInvalid, err.Error())
	}

	var request UpdateProfileRequest
	if ok, err := parseBody(c, h.validate, &request); !ok {
		return err
	}

	profile, err := h.userService.UpdateProfile(c.UserContext(), userID, service.UpdateProfileInput{
		DisplayName: request.DisplayName,
		Profile:     request.Profile,
		Image:       request.Image,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(profile)
}

func (h *UserHandler) GetAvatarUploadURL(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return writeError(c, ErrCodeTokenInvalid, err.Error())
	}

	upload, err := h.userService.AvatarUploadURL(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(upload)
}
