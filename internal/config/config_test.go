package config

import (
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEnv(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadEnv(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "./data/biblestudy.db", cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "admin", cfg.DefaultAdminUsername)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ":3001", cfg.ServerAddr())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := loadEnv(map[string]string{
		"PORT":             "8080",
		"HOST":             "127.0.0.1",
		"JWT_EXPIRES_IN":   "30m",
		"LOGIN_RATE_LIMIT": "0.5",
		"LOGIN_BURST":      "3",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddr())
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, 0.5, cfg.LoginRateLimit)
	assert.Equal(t, 3, cfg.LoginBurst)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{name: "bad port", vars: map[string]string{"PORT": "70000"}, want: "PORT"},
		{name: "unparsable duration", vars: map[string]string{"JWT_EXPIRES_IN": "soon"}, want: "parsing config"},
		{name: "zero burst", vars: map[string]string{"LOGIN_BURST": "0"}, want: "LOGIN_BURST"},
		{name: "production with default secret", vars: map[string]string{
			"ENV":                    "production",
			"DEFAULT_ADMIN_PASSWORD": "a-real-password",
		}, want: "JWT_SECRET"},
		{name: "production with default admin password", vars: map[string]string{
			"ENV":        "production",
			"JWT_SECRET": "a-real-secret",
		}, want: "DEFAULT_ADMIN_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadEnv(tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadProduction(t *testing.T) {
	cfg, err := loadEnv(map[string]string{
		"ENV":                    "production",
		"JWT_SECRET":             "a-real-secret",
		"DEFAULT_ADMIN_PASSWORD": "a-real-password",
	})
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestStringMasksSecrets(t *testing.T) {
	cfg, err := loadEnv(map[string]string{
		"JWT_SECRET":             "super-secret-value",
		"DEFAULT_ADMIN_PASSWORD": "hunter22",
	})
	require.NoError(t, err)

	s := cfg.String()
	assert.False(t, strings.Contains(s, "super-secret-value"))
	assert.False(t, strings.Contains(s, "hunter22"))
	assert.Contains(t, s, "jwt_secret=****")
}
