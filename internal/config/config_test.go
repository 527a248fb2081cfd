package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("REMOTE_USERS_URL", "https://example.test/users")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/users.db", cfg.Store.Path)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.Zero(t, cfg.Remote.RetryCount)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "@daily", cfg.Refresh.TokenCleanupSchedule)
	assert.Empty(t, cfg.Refresh.Schedule)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("REMOTE_USERS_URL", "https://example.test/users")
	t.Setenv("REMOTE_API_KEY", "k")
	t.Setenv("REMOTE_TIMEOUT", "3s")
	t.Setenv("REMOTE_RETRY_COUNT", "2")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("PROD_DB_HOST", "db.internal")
	t.Setenv("PROD_JWT_SECRET", "a")
	t.Setenv("PROD_JWT_REFRESH_SECRET", "b")
	t.Setenv("ADMIN_EMAIL", " Ops@Lendsqr.com ")
	t.Setenv("REFRESH_SCHEDULE", "*/30 * * * *")
	t.Setenv("REFRESH_ON_START", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "mysql", cfg.Store.Driver)
	assert.Equal(t, "db.internal", cfg.Store.Host)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 2, cfg.Remote.RetryCount)
	assert.Equal(t, "k", cfg.Remote.APIKey)
	assert.Equal(t, "ops@lendsqr.com", cfg.Admin.Email)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "*/30 * * * *", cfg.Refresh.Schedule)
	assert.True(t, cfg.Refresh.WarmOnStart)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing remote url", map[string]string{"APP_MODE": "dev"}},
		{"bad app mode", map[string]string{"APP_MODE": "staging", "REMOTE_USERS_URL": "http://x"}},
		{"bad driver", map[string]string{"STORE_DRIVER": "postgres", "REMOTE_USERS_URL": "http://x"}},
		{"bad timeout", map[string]string{"REMOTE_TIMEOUT": "soon", "REMOTE_USERS_URL": "http://x"}},
		{"negative retries", map[string]string{"REMOTE_RETRY_COUNT": "-1", "REMOTE_USERS_URL": "http://x"}},
		{"prod default secrets", map[string]string{"APP_MODE": "prod", "REMOTE_USERS_URL": "http://x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REMOTE_USERS_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(StoreConfig{Host: "h", Port: "3306", User: "u", Password: "p", DBName: "d"})
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

func TestConnectDatabase_UnsupportedDriver(t *testing.T) {
	_, err := ConnectDatabase(&Config{Store: StoreConfig{Driver: "oracle"}})
	assert.Error(t, err)
}
