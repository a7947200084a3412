package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("not found")

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
	seq     *sequenceCounter
}

// Open creates a Store on the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	return OpenDriver(context.Background(), DriverSQLite, dsn)
}

// OpenDriver connects to the given backend, applies SQLite pragmas where
// relevant, and runs auto-migration.
func OpenDriver(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var sqlDriver, entDialect string
	switch driver {
	case DriverSQLite, "":
		sqlDriver, entDialect = "sqlite", dialect.SQLite
	case DriverPostgres:
		sqlDriver, entDialect = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported driver: %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if entDialect == dialect.SQLite {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	drv := entsql.OpenDB(entDialect, db)
	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, dialect: entDialect, seq: seq}, nil
}

// migrate creates or updates every table the engine owns.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Responses returns the response history repository.
func (s *Store) Responses() ResponseRepo {
	return &responseRepo{db: s.db, dialect: s.dialect, seq: s.seq}
}

// Prompts returns the candidate question repository.
func (s *Store) Prompts() PromptRepo {
	return &promptRepo{db: s.db, dialect: s.dialect}
}

// Objectives returns the objective catalog repository.
func (s *Store) Objectives() ObjectiveRepo {
	return &objectiveRepo{db: s.db, dialect: s.dialect}
}

// Mastery returns the mastery record and event repository.
func (s *Store) Mastery() MasteryRepo {
	return &masteryRepo{db: s.db, dialect: s.dialect, seq: s.seq}
}

// applyPragmas configures SQLite for single-writer performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ASSESSOR_DB environment variable
// 2. $XDG_DATA_HOME/assessor/assessor.db
// 3. ~/.local/share/assessor/assessor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ASSESSOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "assessor", "assessor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
