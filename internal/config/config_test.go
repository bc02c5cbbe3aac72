package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("USER_STORE", "")
	t.Setenv("REGISTER_RATE_LIMIT", "")
	cfg := Load()

	assert.Equal(t, "memory", cfg.UserStore)
	assert.Equal(t, "smtp", cfg.EmailSender)
	assert.Equal(t, 5.0, cfg.RegisterRateLimit)
	assert.Equal(t, 10, cfg.RegisterRateBurst)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("USER_STORE", "redis")
	t.Setenv("REGISTER_RATE_LIMIT", "0.5")
	t.Setenv("REGISTER_RATE_BURST", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg := Load()

	assert.Equal(t, "redis", cfg.UserStore)
	assert.Equal(t, 0.5, cfg.RegisterRateLimit)
	assert.Equal(t, 10, cfg.RegisterRateBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
