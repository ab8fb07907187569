package api

import (
	"log/slog"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth  *AuthHandler
	Slack *SlackHandler
	User  *UserHandler
}

func NewApp(serviceName, corsOrigins string, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: ErrorHandler(logger),
	})

	app.Use(otelfiber.Middleware())
	app.Use(PrometheusMiddleware())
	if corsOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": serviceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

func SetupRoutes(app *fiber.App, h Handlers, verifier TokenVerifier, loginLimiter *RateLimiter) {
	guard := AuthMiddleware(verifier)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/login", loginLimiter.Middleware(), h.Auth.Login)
	authRoutes.Post("/register", h.Auth.AddUser)

	app.Post("/add.user", h.Auth.AddUser)
	app.Post("/delete.user", h.Auth.DeleteUser)
	app.Get("/protected", guard, h.Auth.Protected)

	slackRoutes := app.Group("/slack")
	slackRoutes.Get("/authorize_uri/:type", h.Slack.AuthorizeURI)
	slackRoutes.Get("/alignment/:code", guard, h.Slack.Alignment)
	slackRoutes.Get("/signup/:code", h.Slack.Signup)
	slackRoutes.Get("/oauth.access/:code", guard, h.Slack.OAuthAccess)
	slackRoutes.Post("/auth.test", guard, h.Slack.AuthTest)
	slackRoutes.Post("/users.info", guard, h.Slack.UsersInfo)

	userRoutes := app.Group("/users", guard)
	userRoutes.Get("/me", h.User.GetMe)
	userRoutes.Put("/me/profile", h.User.UpdateProfile)
	userRoutes.Post("/me/avatar/upload-url", h.User.GetAvatarUploadURL)
}
