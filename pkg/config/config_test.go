package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, time.Hour, cfg.Worker.OrphanGrace())
	assert.Equal(t, 20, cfg.RateLimit.Uploads)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("STORAGE_S3_BUCKET", "recipes")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "recipes", cfg.Storage.S3Bucket)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestConfigHelpers(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())

	r := RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", r.Addr())

	s := ServerConfig{Host: "0.0.0.0", Port: 8000, Env: "development"}
	assert.Equal(t, "0.0.0.0:8000", s.Addr())
	assert.True(t, s.IsDevelopment())
}
