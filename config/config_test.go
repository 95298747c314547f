package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-blog/config"
)

var keys = []string{
	"PORT", "API_PREFIX", "APP_ENV", "STORE_DRIVER", "DATABASE_URL",
	"MONGO_URI", "MONGO_DATABASE", "JWT_SECRET", "JWT_EXPIRES_IN",
	"JWT_ISSUER", "SALT_ROUNDS", "UPLOAD_DIR", "UPLOAD_PUBLIC_PATH",
	"UPLOAD_MAX_BYTES", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW",
	"CORS_ORIGINS", "STORE_TIMEOUT",
}

// clearEnv blanks every key so the host env does not leak into tests
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, config.StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.GetTokenExpiration())
	assert.Equal(t, 10, cfg.GetSaltRounds())
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "header:Authorization", cfg.GetTokenLookup())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_EXPIRES_IN", "3600")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SALT_ROUNDS", "12")

	cfg, err := config.Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 12, cfg.SaltRounds)
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	require.NoError(t, os.Unsetenv("API_PREFIX"))

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("JWT_SECRET=from-file\nAPI_PREFIX=/v1\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("JWT_SECRET")
		_ = os.Unsetenv("API_PREFIX")
	})

	cfg, err := config.Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GetSigningKey())
	assert.Equal(t, "/v1", cfg.APIPrefix)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{name: "missing secret", env: map[string]string{}, field: "JWTSecret"},
		{
			name:  "unknown driver",
			env:   map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "redis"},
			field: "StoreDriver",
		},
		{
			name:  "mongo without uri",
			env:   map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "mongo"},
			field: "MongoURI",
		},
		{
			name:  "salt rounds too low",
			env:   map[string]string{"JWT_SECRET": "s", "SALT_ROUNDS": "2"},
			field: "SaltRounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(missingFile(t))
			require.Error(t, err)

			errs, ok := err.(validation.Errors)
			require.True(t, ok, "expected validation.Errors, got %T", err)
			assert.Contains(t, errs, tt.field)
		})
	}
}
