package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []int64{1, 2}, cfg.DefaultRoleIDs)
	assert.Equal(t, "https://slack.com/api", cfg.Slack.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Slack.HTTPTimeout)
	assert.Equal(t, "users:read,users:read.email", cfg.Slack.Scope)
}

func TestLoad_SlackScopeNeverEmpty(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SLACK_SCOPE", "")

	cfg, err := Load()
	if err == nil {
		assert.NotEmpty(t, cfg.Slack.Scope)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "15m")
	t.Setenv("DEFAULT_ROLE_IDS", "2,3")
	t.Setenv("SIGNUP_APPROVAL_DOMAINS", "example.com,example.org")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "menteam")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, []int64{2, 3}, cfg.DefaultRoleIDs)
	assert.Equal(t, []string{"example.com", "example.org"}, cfg.Slack.SignupDomains)
	assert.Equal(t, "postgres://u:p@db:5433/menteam?sslmode=disable", cfg.DB.URL())
}

func TestLoadDatabase_DoesNotNeedSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_NAME", "menteam")

	cfg, err := LoadDatabase()
	require.NoError(t, err)

	assert.Equal(t, "menteam", cfg.Name)
	assert.Contains(t, cfg.URL(), "/menteam?sslmode=disable")
}
