package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "OPS_PORT", "STORE_DRIVER", "DATA_DIR", "FREE_DAILY_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8081", cfg.Server.OpsPort)
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "./data", cfg.Store.DataDir)
	assert.Equal(t, 3, cfg.Quota.FreeDailyLimit)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", StoreDriverPostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost/cnc")
	t.Setenv("FREE_DAILY_LIMIT", "5")
	t.Setenv("GEMINI_MODEL", "gemini-3-pro-preview")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/cnc", cfg.Store.DatabaseURL)
	assert.Equal(t, 5, cfg.Quota.FreeDailyLimit)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Gemini.Model)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("FREE_DAILY_LIMIT", "lots")
	cfg := Load()
	assert.Equal(t, 3, cfg.Quota.FreeDailyLimit)
}
