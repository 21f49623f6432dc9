package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "HTTP_PORT", "JWT_SECRET", "JWT_ISSUER", "JWT_TTL",
		"BCRYPT_COST", "HASH_WORKERS", "CORS_ALLOWED_ORIGINS",
	} {
		// Setenv registers the restore; Unsetenv makes the key absent.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaultsInDev(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "user-directory", cfg.JWTIssuer)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 4, cfg.HashWorkers)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.InsecureSecret)
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ISSUER", "dir")
	t.Setenv("JWT_TTL", "5m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("HASH_WORKERS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.InsecureSecret)
	assert.Equal(t, "dir", cfg.JWTIssuer)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 2, cfg.HashWorkers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"cost too low":  {"BCRYPT_COST", "3"},
		"cost too high": {"BCRYPT_COST", "32"},
		"zero ttl":      {"JWT_TTL", "0s"},
		"no workers":    {"HASH_WORKERS", "0"},
		"unparsable":    {"HASH_WORKERS", "many"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", "dev")
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
