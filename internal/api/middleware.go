package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"menteam-auth/internal/jwt"
)

const userClaimsKey = "userClaims"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication and account linking attempts by outcome",
		},
		[]string{"operation", "result"},
	)
)

func recordAuthAttempt(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	authAttemptsTotal.WithLabelValues(operation, result).Inc()
}

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

func AuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return writeError(c, ErrCodeTokenMissing, "Missing authorization header")
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return writeError(c, ErrCodeTokenMissing, "Invalid authorization header format")
		}

		claims, err := verifier.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return writeError(c, ErrCodeTokenExpired, "Token has expired")
			}
			return writeError(c, ErrCodeTokenInvalid, "Invalid token")
		}

		c.Locals(userClaimsKey, claims)

		return c.Next()
	}
}

func GetUserIDFromClaims(c *fiber.Ctx) (string, error) {
	claims, ok := c.Locals(userClaimsKey).(*jwt.Claims)
	if !ok || claims == nil {
		return "", errors.New("claims not found in context")
	}
	if claims.UserID == "" {
		return "", errors.New("userId not found in claims")
	}
	return claims.UserID, nil
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		// Route pattern rather than raw path keeps OAuth codes out of labels.
		path := c.Route().Path
		statusStr := strconv.Itoa(statusCode)

		httpRequestTotal.WithLabelValues(c.Method(), path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path, statusStr).Observe(duration)

		return err
	}
}
