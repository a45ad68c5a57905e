package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("LEDGER_TIMEZONE", "UTC")

	LoadConfig()
	require.NotNil(t, Cfg)

	assert.Equal(t, time.UTC, Cfg.LedgerLocation)
	assert.False(t, Cfg.GoogleConfigured())
	assert.GreaterOrEqual(t, len(Cfg.CSRFAuthKey), 32)
	assert.NotEmpty(t, Cfg.AllowedOrigins)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("LEDGER_TIMEZONE", "Asia/Dhaka")
	t.Setenv("FORM_DRAFT_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("EMAIL_SERVICE_PROVIDER", "Mailgun")

	LoadConfig()

	assert.Equal(t, "9090", Cfg.Port)
	assert.True(t, Cfg.GoogleConfigured())
	assert.Equal(t, "Asia/Dhaka", Cfg.LedgerLocation.String())
	assert.Equal(t, 2*time.Hour, Cfg.FormDraftTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, Cfg.AllowedOrigins)
	assert.Equal(t, 5, Cfg.RateLimitBurst)
	assert.Equal(t, "mailgun", Cfg.EmailServiceProvider)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LEDGER_TIMEZONE", "Mars/Olympus")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "soon")
	t.Setenv("RATE_LIMIT_RPS", "-3")

	LoadConfig()

	assert.Equal(t, time.UTC, Cfg.LedgerLocation)
	assert.Equal(t, 60*time.Minute, Cfg.AccessTokenExpiry)
	assert.Equal(t, float64(10), Cfg.RateLimitRPS)
}

func TestHasValue(t *testing.T) {
	assert.False(t, hasValue(""))
	assert.False(t, hasValue("undefined"))
	assert.False(t, hasValue("  "))
	assert.True(t, hasValue("abc"))
}
