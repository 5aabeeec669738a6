package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test/")
	t.Setenv("AUDIT_DB_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.test", cfg.APIBaseURL, "trailing slash is trimmed")
	assert.Equal(t, "token", cfg.SessionCookie)
	assert.Equal(t, time.Minute, cfg.InboxPollInterval)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.False(t, cfg.AuditDB.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://crm.example.com")
	t.Setenv("INBOX_POLL_INTERVAL", "15s")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_OUTREACH", "5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.InboxPollInterval)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5, cfg.RateLimitOutreach)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("non-http base url", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "ftp://nope")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("audit host without password", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "http://api.test")
		t.Setenv("AUDIT_DB_HOST", "db")
		t.Setenv("AUDIT_DB_PASSWORD", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration falls back", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "http://api.test")
		t.Setenv("SEARCH_DEBOUNCE", "soon")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	})
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "host=a password=***** dbname=b", maskPassword("host=a password=secret dbname=b"))
	assert.Equal(t, "host=a password=*****", maskPassword("host=a password=secret"))
	assert.Equal(t, "host=a", maskPassword("host=a"))
}
