package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/ad/go-telegram-gorbushka/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Open connects to the configured database. SQLite gets a single connection
// so in-memory databases stay shared and writers never contend.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case config.DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
		db, err := sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		return db, nil
	case config.DriverPostgres:
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

// Migrate applies all embedded up migrations for the db's dialect and
// returns the resulting schema version.
func Migrate(db *sqlx.DB) (uint, error) {
	dialect := config.DriverSQLite
	if db.DriverName() == "postgres" {
		dialect = config.DriverPostgres
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return 0, fmt.Errorf("load migrations: %w", err)
	}

	var target database.Driver
	switch dialect {
	case config.DriverPostgres:
		target, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		target, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	}
	if err != nil {
		return 0, fmt.Errorf("init migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, target)
	if err != nil {
		return 0, fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return version, nil
}
