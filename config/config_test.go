package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/store"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDevDefaults(t *testing.T) {
	c, err := load(env(map[string]string{"ENV": "dev"}))
	require.NoError(t, err)
	assert.True(t, c.Dev())
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "unsecure", c.JWTSecret)
	assert.Equal(t, store.DriverSQLite, c.DBDriver)
	assert.Equal(t, store.DefaultSQLiteDSN, c.DBURL)
	assert.Equal(t, "uploads", c.UploadDir)
	assert.Equal(t, "/uploads", c.UploadBaseURL)
	assert.False(t, c.UseS3())
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
}

func TestProductionNeedsSecret(t *testing.T) {
	c, err := load(env(nil))
	require.NoError(t, err)
	assert.EqualError(t, c.CheckServe(), "no secret defined")

	c, err = load(env(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)
	assert.NoError(t, c.CheckServe())
	assert.Equal(t, ProEnv, c.Env)
	assert.Empty(t, c.Addr)
	assert.False(t, c.EnableSignup)
}

func TestInvalidValues(t *testing.T) {
	_, err := load(env(map[string]string{"ENV": "staging"}))
	assert.Error(t, err)

	_, err = load(env(map[string]string{"ENV": "dev", "DB_DRIVER": "mysql"}))
	assert.Error(t, err)

	_, err = load(env(map[string]string{"ENV": "dev", "DB_DRIVER": "postgres"}))
	assert.Error(t, err)

	_, err = load(env(map[string]string{"ENV": "dev", "CACHE_TTL": "soon"}))
	assert.Error(t, err)
}

func TestOptionalBackends(t *testing.T) {
	c, err := load(env(map[string]string{
		"ENV":           "dev",
		"DB_DRIVER":     "postgres",
		"DB_URL":        "postgres://localhost/folio",
		"S3_BUCKET":     "media",
		"REDIS_ADDR":    "localhost:6379",
		"CACHE_TTL":     "90",
		"ENABLE_SIGNUP": "true",
	}))
	require.NoError(t, err)
	assert.True(t, c.UseS3())
	assert.Equal(t, "us-east-1", c.S3.Region)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, 90*time.Second, c.CacheTTL)
	assert.True(t, c.EnableSignup)

	c, err = load(env(map[string]string{"ENV": "dev", "CACHE_TTL": "1m30s"}))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, c.CacheTTL)
}
