package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"BACKOFFICE_APP_NAME",
	"BACKOFFICE_APP_ENV",
	"BACKOFFICE_APP_PORT",
	"BACKOFFICE_DATABASE_HOST",
	"BACKOFFICE_DATABASE_PORT",
	"BACKOFFICE_DATABASE_PASSWORD",
	"BACKOFFICE_DATABASE_SSLMODE",
	"BACKOFFICE_DATABASE_MAX_OPEN_CONNS",
	"BACKOFFICE_DATABASE_MAX_IDLE_CONNS",
	"BACKOFFICE_JWT_SECRET",
	"BACKOFFICE_INVOICING_SEQUENCE_BACKEND",
	"BACKOFFICE_EVENT_NATS_ENABLED",
}

// clearEnv unsets every variable Load reads in these tests and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
			os.Unsetenv(k)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "backoffice", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "backoffice", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, SequenceDatabase, cfg.Invoicing.SequenceBackend)
		assert.Equal(t, 1, cfg.Invoicing.NumberRetries)
		assert.False(t, cfg.Event.NATSEnabled)
		assert.Equal(t, "backoffice", cfg.Event.SubjectPrefix)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	})

	t.Run("loads values from environment variables with BACKOFFICE prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BACKOFFICE_APP_PORT", "9000")
		t.Setenv("BACKOFFICE_DATABASE_HOST", "db.internal")
		t.Setenv("BACKOFFICE_DATABASE_PORT", "5433")
		t.Setenv("BACKOFFICE_INVOICING_SEQUENCE_BACKEND", "redis")
		t.Setenv("BACKOFFICE_EVENT_NATS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, SequenceRedis, cfg.Invoicing.SequenceBackend)
		assert.True(t, cfg.Event.NATSEnabled)
	})

	t.Run("rejects an unknown sequence backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BACKOFFICE_INVOICING_SEQUENCE_BACKEND", "etcd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invoicing.sequence_backend")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BACKOFFICE_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("BACKOFFICE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BACKOFFICE_APP_ENV", "production")
		t.Setenv("BACKOFFICE_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("BACKOFFICE_DATABASE_PASSWORD", "secure-password")
		t.Setenv("BACKOFFICE_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires a long jwt secret", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BACKOFFICE_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires SSL enabled", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BACKOFFICE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("refuses the in-memory sequence", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BACKOFFICE_INVOICING_SEQUENCE_BACKEND", "memory")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memory is not allowed in production")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass@word#123",
		DBName:   "db",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "pass%40word%23123")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
