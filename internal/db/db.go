package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// DriverSQLite is the default store: a single local database file, no server.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the catalog store backend.
type Config struct {
	Driver string // sqlite | postgres
	Path   string // sqlite database file
	DSN    string // postgres connection string
}

// ConfigFromEnv reads the store configuration from the environment.
func ConfigFromEnv() Config {
	cfg := Config{
		Driver: os.Getenv("POS_DB_DRIVER"),
		Path:   os.Getenv("POS_DB_PATH"),
		DSN:    os.Getenv("DATABASE_URL"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = "pos-database.db"
	}
	return cfg
}

// Open opens and verifies the configured database.
func Open(cfg Config) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		database, err := sql.Open("sqlite", sqliteDSN(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if cfg.Path == ":memory:" {
			// The pool must not hand out a second connection: every new
			// in-memory connection is a fresh empty database.
			database.SetMaxOpenConns(1)
			if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
				return nil, fmt.Errorf("enable foreign keys: %w", err)
			}
		}
		if err := database.Ping(); err != nil {
			return nil, fmt.Errorf("ping sqlite database: %w", err)
		}
		return database, nil
	case DriverPostgres:
		database, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		if err := database.Ping(); err != nil {
			return nil, fmt.Errorf("ping postgres database: %w", err)
		}
		return database, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate applies the embedded schema and seed migrations for the given driver.
func Migrate(conn *sql.DB, driver string) error {
	source, err := iofs.New(migrationFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	var drv migratedb.Driver
	switch driver {
	case DriverSQLite:
		drv, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	case DriverPostgres:
		drv, err = migratepg.WithInstance(conn, &migratepg.Config{})
	default:
		return fmt.Errorf("unknown database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, drv)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
