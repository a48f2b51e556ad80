package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL())
	assert.Equal(t, time.Minute, cfg.StorageOpTimeout())
	assert.Equal(t, 5, cfg.MaxAttachments)
	assert.Equal(t, 1, cfg.UploadConcurrency)
	assert.Equal(t, "50M", cfg.MaxBodySize)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DBDriver:        "memory",
			StorageBackend:  "memory",
			SignedURLTTLSec: 3600,
			MaxAttachments:  5,
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DBDriver = "sqlite" }, "unknown DB_DRIVER"},
		{"mysql missing settings", func(c *Config) { c.DBDriver = "mysql" }, "DB_USER, DB_HOST, DB_NAME"},
		{"mysql via cloud sql", func(c *Config) {
			c.DBDriver = "mysql"
			c.DBUser, c.DBName, c.InstanceConnectionName = "app", "inventory", "proj:region:db"
		}, ""},
		{"gcs without bucket", func(c *Config) { c.StorageBackend = "gcs" }, "requires STORAGE_BUCKET"},
		{"s3 with bucket", func(c *Config) { c.StorageBackend, c.StorageBucket = "s3", "media" }, ""},
		{"unknown backend", func(c *Config) { c.StorageBackend = "ftp" }, "unknown STORAGE_BACKEND"},
		{"zero ttl", func(c *Config) { c.SignedURLTTLSec = 0 }, "SIGNED_URL_TTL_SECONDS"},
		{"zero attachments", func(c *Config) { c.MaxAttachments = 0 }, "MAX_ATTACHMENTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
