package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()
	require.NotNil(t, AppConfig)

	assert.Equal(t, "8080", AppConfig.Port)
	assert.Equal(t, "dev", AppConfig.Env)
	assert.Equal(t, "mongodb://localhost:27017", AppConfig.MongoURL)
	assert.Equal(t, "drinkbuddies", AppConfig.DatabaseName)
	assert.Equal(t, "redis://localhost:6379", AppConfig.RedisURL)
	assert.Equal(t, 30, AppConfig.AccessTokenExpireMinutes)
	assert.Equal(t, "./uploads", AppConfig.UploadDir)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_NAME", "drinkbuddies_test")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "60")

	LoadConfig()
	require.NotNil(t, AppConfig)

	assert.Equal(t, "9090", AppConfig.Port)
	assert.Equal(t, "production", AppConfig.Env)
	assert.Equal(t, "drinkbuddies_test", AppConfig.DatabaseName)
	assert.Equal(t, 60, AppConfig.AccessTokenExpireMinutes)
}
