package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/assessor/internal/store"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ASSESSOR_DB_DRIVER", "ASSESSOR_DB_DSN", "ASSESSOR_DB", "ASSESSOR_HTTP_ADDR",
		"ASSESSOR_CORS_ORIGINS", "ASSESSOR_LOG_MODE", "ASSESSOR_REDIS_ADDR", "ASSESSOR_REDIS_TTL",
		"ASSESSOR_NEO4J_URI", "ASSESSOR_NEO4J_USER", "ASSESSOR_NEO4J_PASSWORD", "ASSESSOR_NEO4J_DATABASE",
		"ASSESSOR_INITIAL_DIFFICULTY", "ASSESSOR_COOLDOWN_DAYS", "ASSESSOR_LOOKBACK_DAYS", "ASSESSOR_RELAX_COOLDOWN", "ASSESSOR_RESUME_FROM_HISTORY",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, store.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 50.0, cfg.Assessment.InitialDifficulty)
	assert.Equal(t, 14, cfg.Assessment.CooldownDays)
	assert.Equal(t, 90, cfg.Assessment.LookbackDays)
	assert.False(t, cfg.Assessment.RelaxCooldown)
	assert.False(t, cfg.Assessment.ResumeFromHistory)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASSESSOR_DB_DRIVER", "Postgres")
	t.Setenv("ASSESSOR_DB_DSN", "postgres://u:p@localhost/assessor")
	t.Setenv("ASSESSOR_HTTP_ADDR", ":9090")
	t.Setenv("ASSESSOR_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ASSESSOR_LOG_MODE", "prod")
	t.Setenv("ASSESSOR_REDIS_ADDR", "localhost:6379")
	t.Setenv("ASSESSOR_REDIS_TTL", "10m")
	t.Setenv("ASSESSOR_NEO4J_URI", "neo4j://localhost:7687")
	t.Setenv("ASSESSOR_NEO4J_USER", "neo4j")
	t.Setenv("ASSESSOR_INITIAL_DIFFICULTY", "40")
	t.Setenv("ASSESSOR_COOLDOWN_DAYS", "7")
	t.Setenv("ASSESSOR_LOOKBACK_DAYS", "30")
	t.Setenv("ASSESSOR_RELAX_COOLDOWN", "true")
	t.Setenv("ASSESSOR_RESUME_FROM_HISTORY", "1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, store.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost/assessor", cfg.Storage.DSN)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "prod", cfg.Log.Mode)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, 40.0, cfg.Assessment.InitialDifficulty)
	assert.Equal(t, 7, cfg.Assessment.CooldownDays)
	assert.Equal(t, 30, cfg.Assessment.LookbackDays)
	assert.True(t, cfg.Assessment.RelaxCooldown)
	assert.True(t, cfg.Assessment.ResumeFromHistory)
}

func TestFromEnv_LegacyDBPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASSESSOR_DB", "/tmp/a.db")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.db", cfg.Storage.DSN)
}

func TestFromEnv_ParseErrors(t *testing.T) {
	for _, kv := range [][2]string{
		{"ASSESSOR_REDIS_TTL", "soon"},
		{"ASSESSOR_INITIAL_DIFFICULTY", "mid"},
		{"ASSESSOR_COOLDOWN_DAYS", "two weeks"},
		{"ASSESSOR_LOOKBACK_DAYS", "1.5"},
		{"ASSESSOR_RELAX_COOLDOWN", "maybe"},
		{"ASSESSOR_RESUME_FROM_HISTORY", "sometimes"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.ErrorContains(t, err, kv[0])
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = store.DriverPostgres }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }},
		{"unknown log mode", func(c *Config) { c.Log.Mode = "verbose" }},
		{"difficulty above range", func(c *Config) { c.Assessment.InitialDifficulty = 101 }},
		{"zero cooldown", func(c *Config) { c.Assessment.CooldownDays = 0 }},
		{"zero lookback", func(c *Config) { c.Assessment.LookbackDays = 0 }},
		{"cooldown beyond lookback", func(c *Config) { c.Assessment.CooldownDays = 120 }},
		{"neo4j without user", func(c *Config) { c.Neo4j.URI = "neo4j://x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
