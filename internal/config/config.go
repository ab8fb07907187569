package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"menteam-auth"`
	Port        string `env:"APP_PORT" envDefault:"8000"`
	CORSOrigins string `env:"CORS_ORIGINS"`

	DB DatabaseConfig

	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"1h"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`

	DefaultRoleIDs     []int64 `env:"DEFAULT_ROLE_IDS" envDefault:"1,2" envSeparator:","`
	LoginRatePerMinute int     `env:"LOGIN_RATE_PER_MINUTE" envDefault:"30"`

	Slack SlackConfig

	NatsURL      string `env:"NATS_URL"`
	OtelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	S3 S3Config
}

type DatabaseConfig struct {
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	Name     string `env:"DB_NAME"`
}

type SlackConfig struct {
	ClientID          string        `env:"SLACK_CLIENT_ID"`
	ClientSecret      string        `env:"SLACK_CLIENT_SECRET"`
	BotToken          string        `env:"SLACK_BOT_TOKEN"`
	// Slack omits the top-level access_token when only user scopes are granted.
	Scope             string        `env:"SLACK_SCOPE,notEmpty" envDefault:"users:read,users:read.email"`
	UserScope         string        `env:"SLACK_USER_SCOPE"`
	AppURI            string        `env:"APP_URI"`
	AlignmentRedirect string        `env:"SLACK_ALIGNMENT_REDIRECT"`
	SignupRedirect    string        `env:"SLACK_SIGNUP_REDIRECT"`
	SignupDomains     []string      `env:"SIGNUP_APPROVAL_DOMAINS" envSeparator:","`
	AuthorizeURL      string        `env:"SLACK_AUTHORIZE_URL" envDefault:"https://slack.com/oauth/v2/authorize"`
	TokenURL          string        `env:"SLACK_TOKEN_URL" envDefault:"https://slack.com/api/oauth.v2.access"`
	APIURL            string        `env:"SLACK_API_URL" envDefault:"https://slack.com/api"`
	HTTPTimeout       time.Duration `env:"SLACK_HTTP_TIMEOUT" envDefault:"10s"`
}

type S3Config struct {
	Endpoint     string `env:"S3_ENDPOINT"`
	Region       string `env:"AWS_REGION" envDefault:"us-east-1"`
	BucketName   string `env:"S3_BUCKET_NAME"`
	AccessKey    string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE"`
}

// Load reads .env.dev when present and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.dev")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}

// LoadDatabase parses only the database settings, for commands that do not
// serve traffic.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load(".env.dev")

	var cfg DatabaseConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &cfg, nil
}

func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// RedirectURI returns the absolute Slack redirect target for a path.
func (s SlackConfig) RedirectURI(path string) string {
	return s.AppURI + path
}
