// Package config assembles runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/assessor/internal/store"
)

// Config holds all service configuration.
type Config struct {
	Storage    StorageConfig
	Server     ServerConfig
	Log        LogConfig
	Redis      RedisConfig
	Neo4j      Neo4jConfig
	Assessment AssessmentConfig
}

// StorageConfig selects the SQL backend.
type StorageConfig struct {
	Driver store.Driver // "sqlite" or "postgres"
	DSN    string       // Empty means the default SQLite path.
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// LogConfig configures logging.
type LogConfig struct {
	Mode string // "dev" or "prod"
}

// RedisConfig configures the ability cache. An empty Addr disables it.
type RedisConfig struct {
	Addr string
	TTL  time.Duration
}

// Neo4jConfig configures the objective graph. An empty URI uses the graph
// stored alongside the catalog.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

// AssessmentConfig holds orchestrator policy.
type AssessmentConfig struct {
	InitialDifficulty float64
	CooldownDays      int
	LookbackDays      int
	// RelaxCooldown retries selection with only in-session exclusions when
	// the cooldown leaves no candidate.
	RelaxCooldown bool
	// ResumeFromHistory adapts from the latest stored response when a
	// request names no previous response.
	ResumeFromHistory bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Driver: store.DriverSQLite},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Log:   LogConfig{Mode: "dev"},
		Redis: RedisConfig{TTL: 24 * time.Hour},
		Assessment: AssessmentConfig{
			InitialDifficulty: 50,
			CooldownDays:      14,
			LookbackDays:      90,
		},
	}
}

// FromEnv builds a Config from ASSESSOR_* environment variables, falling
// back to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("ASSESSOR_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = store.Driver(strings.ToLower(v))
	}
	if v := os.Getenv("ASSESSOR_DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	} else if v := os.Getenv("ASSESSOR_DB"); v != "" {
		cfg.Storage.DSN = v
	}

	if v := os.Getenv("ASSESSOR_HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ASSESSOR_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("ASSESSOR_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}

	cfg.Redis.Addr = os.Getenv("ASSESSOR_REDIS_ADDR")
	if v := os.Getenv("ASSESSOR_REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("ASSESSOR_REDIS_TTL: %w", err)
		}
		cfg.Redis.TTL = d
	}

	cfg.Neo4j.URI = os.Getenv("ASSESSOR_NEO4J_URI")
	cfg.Neo4j.User = os.Getenv("ASSESSOR_NEO4J_USER")
	cfg.Neo4j.Password = os.Getenv("ASSESSOR_NEO4J_PASSWORD")
	cfg.Neo4j.Database = os.Getenv("ASSESSOR_NEO4J_DATABASE")

	if v := os.Getenv("ASSESSOR_INITIAL_DIFFICULTY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("ASSESSOR_INITIAL_DIFFICULTY: %w", err)
		}
		cfg.Assessment.InitialDifficulty = f
	}
	if v := os.Getenv("ASSESSOR_COOLDOWN_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("ASSESSOR_COOLDOWN_DAYS: %w", err)
		}
		cfg.Assessment.CooldownDays = n
	}
	if v := os.Getenv("ASSESSOR_LOOKBACK_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("ASSESSOR_LOOKBACK_DAYS: %w", err)
		}
		cfg.Assessment.LookbackDays = n
	}
	if v := os.Getenv("ASSESSOR_RELAX_COOLDOWN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("ASSESSOR_RELAX_COOLDOWN: %w", err)
		}
		cfg.Assessment.RelaxCooldown = b
	}
	if v := os.Getenv("ASSESSOR_RESUME_FROM_HISTORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("ASSESSOR_RESUME_FROM_HISTORY: %w", err)
		}
		cfg.Assessment.ResumeFromHistory = b
	}

	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("ASSESSOR_DB_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Storage.Driver)
	}

	switch strings.ToLower(c.Log.Mode) {
	case "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("unknown log mode: %q", c.Log.Mode)
	}

	a := c.Assessment
	if a.InitialDifficulty < 0 || a.InitialDifficulty > 100 {
		return fmt.Errorf("initial difficulty %v outside [0, 100]", a.InitialDifficulty)
	}
	if a.CooldownDays <= 0 {
		return fmt.Errorf("cooldown days must be positive")
	}
	if a.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive")
	}
	if a.CooldownDays > a.LookbackDays {
		return fmt.Errorf("cooldown (%d days) exceeds lookback (%d days)", a.CooldownDays, a.LookbackDays)
	}

	if c.Neo4j.URI != "" && c.Neo4j.User == "" {
		return fmt.Errorf("ASSESSOR_NEO4J_USER is required when ASSESSOR_NEO4J_URI is set")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
