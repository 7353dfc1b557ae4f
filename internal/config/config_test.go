package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"CART_STORE", "CART_TTL", "CORS_ORIGINS", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	cfg := LoadConfig()

	assert.Equal(t, CartStoreMemory, cfg.CartStore)
	assert.Equal(t, 30*24*time.Hour, cfg.CartTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CART_STORE", "Redis")
	t.Setenv("CART_TTL", "2h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REQUEST_TIMEOUT", "nonsense")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, CartStoreRedis, cfg.CartStore)
	assert.Equal(t, 2*time.Hour, cfg.CartTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{MongoURI: "mongodb://x", CartStore: CartStoreRedis}
	assert.ErrorContains(t, cfg.Validate(), "REDIS_ADDR")

	cfg.CartStore = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "unknown CART_STORE")

	cfg.CartStore = CartStoreMemory
	assert.NoError(t, cfg.Validate())

	cfg.MongoURI = ""
	assert.Error(t, cfg.Validate())
}
