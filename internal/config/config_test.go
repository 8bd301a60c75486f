package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "PORT", "REDIS_ADDR", "ATOMIC_SAVES", "CASCADE_LIST_REMOVAL", "JWT_ACCESS_EXPIRY", "LOG_RETENTION_DAYS"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.RedisAddr)
	assert.True(t, cfg.AtomicSaves)
	assert.True(t, cfg.CascadeListRemoval)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 30, cfg.LogRetentionDays)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ATOMIC_SAVES", "false")
	t.Setenv("CASCADE_LIST_REMOVAL", "0")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_REFRESH_EXPIRY", "2h")
	t.Setenv("LOG_RETENTION_DAYS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.False(t, cfg.AtomicSaves)
	assert.False(t, cfg.CascadeListRemoval)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 2*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, 30, cfg.LogRetentionDays)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, 15*time.Minute, parseDuration("soon"))
	assert.Equal(t, time.Second, parseDuration("1s"))
}
