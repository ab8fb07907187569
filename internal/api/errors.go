package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"menteam-auth/internal/jwt"
	"menteam-auth/internal/service"
)

type ErrCode struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
}

var (
	ErrCodeInvalidCredentials = ErrCode{"invalid_credentials", fiber.StatusUnauthorized}
	ErrCodeAlreadyExists      = ErrCode{"already_exists", fiber.StatusUnauthorized}
	ErrCodeInvalidInput       = ErrCode{"invalid_input", fiber.StatusBadRequest}
	ErrCodeInvalidIntent      = ErrCode{"invalid_intent", fiber.StatusBadRequest}
	ErrCodeNotFound           = ErrCode{"not_found", fiber.StatusNotFound}
	ErrCodeUnauthorizedDomain = ErrCode{"unauthorized_domain", fiber.StatusUnauthorized}
	ErrCodeExternalProvider   = ErrCode{"external_provider_error", fiber.StatusUnauthorized}
	ErrCodeForbidden          = ErrCode{"forbidden", fiber.StatusForbidden}
	ErrCodeTokenMissing       = ErrCode{"token_missing", fiber.StatusUnauthorized}
	ErrCodeTokenInvalid       = ErrCode{"token_invalid", fiber.StatusUnauthorized}
	ErrCodeTokenExpired       = ErrCode{"token_expired", fiber.StatusUnauthorized}
	ErrCodeTooManyRequests    = ErrCode{"too_many_requests", fiber.StatusTooManyRequests}
	ErrCodeInternal           = ErrCode{"internal_error", fiber.StatusInternalServerError}
)

type errorMapping struct {
	target error
	code   ErrCode
}

// errorTable is checked in order; the first errors.Is match wins.
var errorTable = []errorMapping{
	{service.ErrInvalidCredentials, ErrCodeInvalidCredentials},
	{service.ErrUserAlreadyExists, ErrCodeAlreadyExists},
	{service.ErrInvalidRoleIDs, ErrCodeInvalidInput},
	{service.ErrInvalidPassword, ErrCodeInvalidInput},
	{service.ErrInvalidIntent, ErrCodeInvalidIntent},
	{service.ErrUserNotFound, ErrCodeNotFound},
	{service.ErrUnauthorizedDomain, ErrCodeUnauthorizedDomain},
	{service.ErrEmailRequired, ErrCodeUnauthorizedDomain},
	{service.ErrInvalidAccessCode, ErrCodeExternalProvider},
	{service.ErrProfileFetchFailed, ErrCodeExternalProvider},
	{service.ErrIdentityMismatch, ErrCodeForbidden},
	{jwt.ErrTokenExpired, ErrCodeTokenExpired},
	{jwt.ErrTokenInvalid, ErrCodeTokenInvalid},
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(c *fiber.Ctx, code ErrCode, message string) error {
	return c.Status(code.Status).JSON(errorResponse{Error: errorBody{Code: code.Code, Message: message}})
}

// respondError maps err onto the error table. Anything unmapped is logged and
// answered with a generic 500.
func respondError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return writeError(c, m.code, m.target.Error())
		}
	}

	logger.ErrorContext(c.UserContext(), "Request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
	return writeError(c, ErrCodeInternal, "internal server error")
}

// ErrorHandler renders errors returned from fiber itself, such as unknown
// routes, in the same envelope as handler errors.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := ErrCode{Code: "http_error", Status: fe.Code}
			switch fe.Code {
			case fiber.StatusNotFound:
				code = ErrCodeNotFound
			case fiber.StatusBadRequest:
				code = ErrCodeInvalidInput
			case fiber.StatusTooManyRequests:
				code = ErrCodeTooManyRequests
			}
			return writeError(c, code, fe.Message)
		}
		return respondError(c, logger, err)
	}
}
