package api

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"menteam-auth/internal/model"
	"menteam-auth/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		logger:      logger,
	}
}

type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type AddUserRequest struct {
	UserID   string  `json:"userId" validate:"required,max=255"`
	Password string  `json:"password" validate:"omitempty,max=72"`
	RoleIDs  []int64 `json:"roleIds" validate:"required,min=1,dive,gt=0"`
}

type UserRef struct {
	UserID string `json:"userId"`
}

type AddUserResponse struct {
	Message string       `json:"message"`
	User    UserRef      `json:"user"`
	Roles   []model.Role `json:"roles"`
}

type DeleteUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// parseBody decodes and validates the request body, writing a 400 on failure.
// It reports whether the handler should continue.
func parseBody(c *fiber.Ctx, validate *validator.Validate, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, writeError(c, ErrCodeInvalidInput, "Cannot parse JSON")
	}
	if err := validate.Struct(out); err != nil {
		return false, writeError(c, ErrCodeInvalidInput, err.Error())
	}
	return true, nil
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest
	if ok, err := parseBody(c, h.validate, &request); !ok {
		return err
	}

	token, err := h.authService.Authenticate(c.UserContext(), request.UserID, request.Password)
	recordAuthAttempt("login", err)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(LoginResponse{Token: token})
}

func (h *AuthHandler) AddUser(c *fiber.Ctx) error {
	var request AddUserRequest
	if ok, err := parseBody(c, h.validate, &request); !ok {
		return err
	}

	result, err := h.authService.Register(c.UserContext(), service.RegisterInput{
		UserID:   request.UserID,
		Password: request.Password,
		RoleIDs:  request.RoleIDs,
	})
	recordAuthAttempt("register", err)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	status, message := fiber.StatusCreated, "newAdd"
	if !result.Created {
		status, message = fiber.StatusOK, "alreadyExists"
	}

	return c.Status(status).JSON(AddUserResponse{
		Message: message,
		User:    UserRef{UserID: result.User.UserID},
		Roles:   result.Roles,
	})
}

func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	var request DeleteUserRequest
	if ok, err := parseBody(c, h.validate, &request); !ok {
		return err
	}

	if err := h.authService.DeleteUser(c.UserContext(), request.UserID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{"message": "deleted"})
}

func (h *AuthHandler) Protected(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "This is a protected route"})
}
