package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "MISSING_KEY",
			defaultValue: "default_value",
			envValue:     "",
			expected:     "default_value",
		},
		{
			name:         "should return empty string default",
			key:          "EMPTY_KEY",
			defaultValue: "",
			envValue:     "",
			expected:     "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			result := GetEnvWithDefault(tt.key, tt.defaultValue)

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	t.Run("parses integers", func(t *testing.T) {
		t.Setenv("TEST_INT", "42")
		assert.Equal(t, 42, GetEnvAsType("TEST_INT", 7))
	})

	t.Run("falls back on malformed integers", func(t *testing.T) {
		t.Setenv("TEST_INT", "forty-two")
		assert.Equal(t, 7, GetEnvAsType("TEST_INT", 7))
	})

	t.Run("parses booleans", func(t *testing.T) {
		t.Setenv("TEST_BOOL", "true")
		assert.True(t, GetEnvAsType("TEST_BOOL", false))
	})
}

// configEnv lists every variable LoadConfig reads so tests start from a clean slate
var configEnv = []string{
	"APP_ENV", "APP_PORT", "APP_HOST", "LOG_LEVEL", "JWT_SECRET", "TOKEN_TTL_HOURS",
	"DB_DRIVER", "DB_PATH", "LINK_DOMAIN", "MIN_COOKING_TIME", "MIN_INGREDIENT_AMOUNT",
	"PAGE_SIZE", "MAX_PAGE_SIZE", "IMAGE_STORAGE", "S3_BUCKET", "CORS_ALLOWED_ORIGINS",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, v := range configEnv {
		t.Setenv(v, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("successful config load with all env vars", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("APP_PORT", "9000")
		t.Setenv("APP_HOST", "0.0.0.0")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("JWT_SECRET", "super_secret_jwt_key")
		t.Setenv("TOKEN_TTL_HOURS", "2")
		t.Setenv("LINK_DOMAIN", "https://foodgram.example/s/")
		t.Setenv("MIN_COOKING_TIME", "5")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, config.Port)
		assert.Equal(t, "0.0.0.0", config.Host)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, 2*time.Hour, config.TokenTTL)
		assert.Equal(t, "https://foodgram.example/s/", config.LinkDomain)
		assert.Equal(t, 5, config.MinCookingTime)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.CORSAllowedOrigins)
	})

	t.Run("should fail with invalid port", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("APP_PORT", "not_a_number")

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should use defaults when optional env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8080, config.Port)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "sqlite", config.DBDriver)
		assert.Equal(t, 1, config.MinCookingTime)
		assert.Equal(t, 1, config.MinIngredientAmount)
		assert.Equal(t, 6, config.PageSize)
		assert.Equal(t, "local", config.ImageStorage)
	})

	t.Run("should refuse default secret in production", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("APP_ENV", "production")

		_, err := LoadConfig()

		assert.Error(t, err)
	})

	t.Run("should require a bucket for s3 storage", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("IMAGE_STORAGE", "s3")

		_, err := LoadConfig()

		assert.Error(t, err)
	})
}

func TestConfigStringRedactsSecrets(t *testing.T) {
	c := &Config{
		DBPassword:        "db-pass",
		JWTSecret:         "jwt-secret",
		OAuthClientSecret: "client-secret",
		S3AccessKey:       "AKIAEXAMPLEKEY",
		S3SecretKey:       "s3-secret",
	}

	s := c.String()

	for _, secret := range []string{"db-pass", "jwt-secret", "client-secret", "AKIAEXAMPLEKEY", "s3-secret"} {
		assert.NotContains(t, s, secret)
	}
	assert.Contains(t, s, "AKIA**********")
}

func BenchmarkGetEnvWithDefault(b *testing.B) {
	os.Setenv("BENCH_KEY", "test_value")
	defer os.Unsetenv("BENCH_KEY")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}
