package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg := Load()

	assert.Equal(t, "3004", cfg.Port)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, StoreDriverFile, cfg.StoreDriver)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.True(t, cfg.JWTKeyGenerated)
	assert.Len(t, cfg.JWTKey, 32)
	assert.Same(t, cfg, AppConfig)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/catalog")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example, ,https://admin.example")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []byte("s3cret"), cfg.JWTKey)
	assert.False(t, cfg.JWTKeyGenerated)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "postgres://u:p@db/catalog", cfg.DBConnStr)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
}
