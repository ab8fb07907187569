package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"

	"menteam-auth/internal/api"
	"menteam-auth/internal/config"
	"menteam-auth/internal/events"
	"menteam-auth/internal/jwt"
	"menteam-auth/internal/password"
	"menteam-auth/internal/repository"
	"menteam-auth/internal/s3"
	"menteam-auth/internal/service"
	"menteam-auth/internal/slack"
	"menteam-auth/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := api.SetupGlobalHandler(cfg.ServiceName, os.Stdout)

	shutdownTracer, err := tracing.InitTracerProvider(ctx, cfg.ServiceName, cfg.OtelEndpoint, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("Error shutting down tracer provider", slog.Any("error", err))
		}
	}()

	db, err := connectDB(cfg.DB.URL())
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Successfully connected to the database")

	publisher, closePublisher := newPublisher(cfg.NatsURL, logger)
	defer closePublisher()

	presigner, err := s3.NewFilePresigner(ctx, cfg.S3)
	if err != nil {
		return err
	}

	store := repository.NewPostgresStore(db)
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	issuer := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)

	authService := service.NewAuthService(store, hasher, issuer, publisher, logger)
	slackService := service.NewSlackService(slack.NewClient(cfg.Slack), store, hasher, publisher, logger, service.SlackOptions{
		AlignmentRedirectURI: cfg.Slack.RedirectURI(cfg.Slack.AlignmentRedirect),
		SignupRedirectURI:    cfg.Slack.RedirectURI(cfg.Slack.SignupRedirect),
		SignupDomains:        cfg.Slack.SignupDomains,
		DefaultRoleIDs:       cfg.DefaultRoleIDs,
	})
	userService := service.NewUserService(store, presigner, logger)

	loginLimiter := api.NewRateLimiter(cfg.LoginRatePerMinute, 5*time.Minute, logger)
	defer loginLimiter.Stop()

	app := api.NewApp(cfg.ServiceName, cfg.CORSOrigins, logger)
	api.SetupRoutes(app, api.Handlers{
		Auth:  api.NewAuthHandler(authService, logger),
		Slack: api.NewSlackHandler(slackService, logger),
		User:  api.NewUserHandler(userService, logger),
	}, issuer, loginLimiter)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", slog.String("port", cfg.Port))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	return g.Wait()
}

func connectDB(dbURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newPublisher falls back to a no-op publisher when NATS is not configured or
// not reachable, so account flows keep working without the event bus.
func newPublisher(natsURL string, logger *slog.Logger) (events.EventPublisher, func()) {
	if natsURL == "" {
		logger.Warn("NATS_URL not set, domain events disabled")
		return events.NoopPublisher{}, func() {}
	}

	publisher, err := events.NewNatsPublisher(natsURL, logger)
	if err != nil {
		logger.Warn("Failed to connect to NATS, domain events disabled", slog.Any("error", err))
		return events.NoopPublisher{}, func() {}
	}

	logger.Info("Successfully connected to NATS")
	return publisher, publisher.Close
}
