package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "civic.notifications", cfg.Notification.SubjectPrefix)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/civic")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("NOTIFY_NATS_URL", "nats://localhost:4222")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "nats://localhost:4222", cfg.Notification.NATSURL)
	assert.Equal(t, 30, cfg.App.RequestTimeoutSeconds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "mongo"}},
		{name: "postgres without dsn", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "default secret in production", env: map[string]string{"APP_ENV": "production"}},
		{name: "short seed password", env: map[string]string{"SEED_STAFF_PASSWORD": "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
