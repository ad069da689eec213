package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: Burger Master Pro\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, StorageMemory, cfg.Cache.Driver)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.SearchModel)
	assert.Equal(t, 6*time.Hour, cfg.AI.CacheTTL)
	assert.Equal(t, 5, cfg.AI.BreakerFailures)
	assert.Equal(t, time.Minute, cfg.AI.BreakerCooldown)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
app:
  environment: production
  log_format: console
server:
  port: 9000
storage:
  driver: memory
ai:
  timeout: 10s
`)
	t.Setenv("BURGERMASTER_SERVER_PORT", "9100")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "console", cfg.App.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	t.Setenv("API_KEY", "generic")
	t.Setenv("BURGERMASTER_AI_API_KEY", "prefixed")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "prefixed", cfg.AI.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown storage", "storage:\n  driver: mongo\n", "unknown storage.driver"},
		{"postgres without dsn", "storage:\n  driver: postgres\n", "storage.postgres.dsn"},
		{"unknown cache", "cache:\n  driver: memcached\n", "unknown cache.driver"},
		{"unknown provider", "ai:\n  provider: openai\n", "unknown ai.provider"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad log format", "app:\n  log_format: xml\n", "app.log_format"},
		{"bad sampling", "monitoring:\n  sampling_rate: 2\n", "sampling_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoader_Watch(t *testing.T) {
	path := writeConfig(t, "app:\n  log_level: info\n")
	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, path, loader.ConfigFile())

	var mu sync.Mutex
	var latest *Config
	loader.Watch(func(cfg *Config, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		latest = cfg
		mu.Unlock()
	})

	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: debug\n"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return latest != nil && latest.App.LogLevel == "debug"
	}, 5*time.Second, 50*time.Millisecond)
}
