package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LEDGER_STORE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, LedgerStoreMemory, cfg.Ledger.Store)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5*time.Minute, cfg.Rules.CacheTTL)
	assert.False(t, cfg.AuditWorkerEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VAXLEDGER_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/vax")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("LEDGER_STORE", "")
	t.Setenv("RULE_CACHE_TTL", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, LedgerStorePostgres, cfg.Ledger.Store)
	assert.Equal(t, 30*time.Second, cfg.Rules.CacheTTL)
	assert.True(t, cfg.AuditWorkerEnabled())
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Run("unknown ledger store", func(t *testing.T) {
		t.Setenv("LEDGER_STORE", "sqlite")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("postgres ledger without database", func(t *testing.T) {
		t.Setenv("LEDGER_STORE", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("LEDGER_STORE", "memory")
		t.Setenv("RULE_CACHE_TTL", "soon")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("production requires admin token", func(t *testing.T) {
		t.Setenv("LEDGER_STORE", "memory")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("ADMIN_API_TOKEN", "")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}
