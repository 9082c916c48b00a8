package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("USERDIR_CONFIG", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, StoreCookie, cfg.Store)
		assert.Equal(t, SessionMemory, cfg.SessionStore)
		assert.Empty(t, cfg.Audit.KafkaBrokers)
	})

	t.Run("yaml file then env overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "userdir.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
store: file
users_file: /var/lib/userdir/users.json
redis:
  session_ttl: 2h
`), 0o600))
		t.Setenv("USERDIR_CONFIG", path)
		t.Setenv("USERDIR_ADDR", ":9100")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9100", cfg.Addr)
		assert.Equal(t, StoreFile, cfg.Store)
		assert.Equal(t, "/var/lib/userdir/users.json", cfg.UsersFile)
		assert.Equal(t, 2*time.Hour, cfg.Redis.SessionTTL)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.KafkaBrokers)
	})

	t.Run("missing config file fails", func(t *testing.T) {
		t.Setenv("USERDIR_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("unknown store", func(t *testing.T) {
		cfg := Defaults()
		cfg.Store = "postgres"
		assert.ErrorContains(t, cfg.Validate(), "unknown store")
	})

	t.Run("redis sessions need a url", func(t *testing.T) {
		cfg := Defaults()
		cfg.SessionStore = SessionRedis
		assert.ErrorContains(t, cfg.Validate(), "REDIS_URL")

		cfg.Redis.URL = "redis://localhost:6379/0"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("audit memory capacity must be positive", func(t *testing.T) {
		cfg := Defaults()
		cfg.Audit.MemoryCapacity = 0
		assert.ErrorContains(t, cfg.Validate(), "audit memory capacity")
	})
}

func TestAuditMemoryCapacityFromEnv(t *testing.T) {
	t.Setenv("USERDIR_CONFIG", "")
	t.Setenv("AUDIT_MEMORY_CAPACITY", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Audit.MemoryCapacity)
}
