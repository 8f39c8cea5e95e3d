package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Run("defaults with required mongo uri", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")

		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "3000", cfg.Server.HTTPPort)
		assert.Equal(t, DriverMongo, cfg.Storage.Driver)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Repositories.Mongo.URI)
		assert.Equal(t, "taskmanager", cfg.Repositories.Mongo.Database)
		assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
		assert.True(t, cfg.IsDevelopment())
		assert.True(t, cfg.UsesDefaultSecret())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://db:27017")
		t.Setenv("PORT", "8080")
		t.Setenv("JWT_SECRET", "a-real-secret")
		t.Setenv("APP_ENV", "production")

		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.HTTPPort)
		assert.Equal(t, "a-real-secret", cfg.JWT.SecretKey)
		assert.False(t, cfg.IsDevelopment())
	})

	t.Run("missing connection string fails fast", func(t *testing.T) {
		t.Setenv("MONGO_URI", "")

		_, err := InitConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MONGO_URI is required")
	})

	t.Run("postgres driver requires its url", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("POSTGRES_URL", "")

		_, err := InitConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_URL is required")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Mode = ModeDevelopment
		c.Server.HTTPPort = "3000"
		c.Storage.Driver = DriverMongo
		c.Repositories.Mongo.URI = "mongodb://localhost"
		c.Repositories.Mongo.Database = "tasks"
		c.JWT = JWTConfig{SecretKey: DefaultJWTSecret, AccessTokenTTL: time.Hour}
		return c
	}

	t.Run("default secret allowed in development", func(t *testing.T) {
		c := valid()
		assert.NoError(t, c.Validate())
	})

	t.Run("default secret refused in production", func(t *testing.T) {
		c := valid()
		c.Mode = ModeProduction
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET must be set")
	})

	t.Run("unknown driver", func(t *testing.T) {
		c := valid()
		c.Storage.Driver = "redis"
		assert.ErrorContains(t, c.Validate(), `unsupported storage.driver "redis"`)
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		c := valid()
		c.JWT.AccessTokenTTL = 0
		assert.ErrorContains(t, c.Validate(), "accessTokenTTL")
	})
}
