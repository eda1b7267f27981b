package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "secret", cfg.JWTSecretKey)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenDuration)
	assert.Equal(t, 168*time.Hour, cfg.InviteTTL)
	assert.Equal(t, "smtp", cfg.Notifier)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.RateLimit.TrustProxy)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("INVITE_TTL", "48h")
	t.Setenv("INVITE_NOTIFIER", "amqp")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_WINDOW", "garbage")
	t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")

	cfg := LoadConfig()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 48*time.Hour, cfg.InviteTTL)
	assert.Equal(t, "amqp", cfg.Notifier)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.RateLimit.TrustProxy)
}

func TestParseMaxUploadSize_Invalid(t *testing.T) {
	assert.Equal(t, int64(5*1024*1024), parseMaxUploadSize("lots"))
	assert.Equal(t, int64(1024), parseMaxUploadSize("1024"))
}
