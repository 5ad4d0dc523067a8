package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("OBJECT_STORAGE", "")
	t.Setenv("CACHE_TTL", "")

	cfg := FromEnv()
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.SignedURLTTL)
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.AdminUploadApproved)
}

func TestFromEnvTrimsURLs(t *testing.T) {
	t.Setenv("R2_PUBLIC_URL", "https://pub-123.r2.dev/")
	t.Setenv("R2_ENDPOINT", "https://acc.r2.cloudflarestorage.com/")

	cfg := FromEnv()
	assert.Equal(t, "https://pub-123.r2.dev", cfg.R2PublicURL)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", cfg.R2Endpoint)
}

func TestStorageEndpointURL(t *testing.T) {
	cfg := &Config{R2Endpoint: "https://acc.r2.cloudflarestorage.com"}
	assert.Empty(t, cfg.StorageEndpointURL())

	cfg.R2Bucket = "media"
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com/media", cfg.StorageEndpointURL())
}

func TestGetEnvAsBool(t *testing.T) {
	cases := map[string]bool{"1": true, "true": true, "yes": true, "on": true, "0": false, "off": false}
	for raw, want := range cases {
		t.Setenv("FLAG_UNDER_TEST", raw)
		assert.Equal(t, want, getEnvAsBool("FLAG_UNDER_TEST", !want), raw)
	}

	t.Setenv("FLAG_UNDER_TEST", "maybe")
	assert.True(t, getEnvAsBool("FLAG_UNDER_TEST", true))
}

func TestValidate(t *testing.T) {
	cfg := FromEnv()
	cfg.ObjectStorage = true
	cfg.R2Bucket = ""
	require.Error(t, cfg.Validate())

	cfg.R2Bucket = "media"
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.StorageEnabled())

	cfg.Env = "production"
	cfg.JWTSecret = "strong_secret"
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "s3cr3t"
	cfg.NewsProvider = "bing"
	require.Error(t, cfg.Validate())
}
