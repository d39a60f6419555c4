package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Action is a migration command accepted by Migrator.Run
type Action string

const (
	ActionUp      Action = "up"
	ActionDown    Action = "down"
	ActionVersion Action = "version"
	ActionForce   Action = "force"
)

// Status is the schema version after a migration command
type Status struct {
	Version uint
	Dirty   bool
	// Changed is false when the command found nothing to do
	Changed bool
}

// Migrator applies the embedded verification and cache schema
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator wraps an open database/sql handle. dbName is required by the
// postgres driver for its advisory lock.
func NewMigrator(db *sql.DB, dbName string) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: dbName})
	if err != nil {
		return nil, fmt.Errorf("migrate driver for %s: %w", dbName, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator for %s: %w", dbName, err)
	}

	return &Migrator{m: m}, nil
}

// MigrateUp opens a short-lived connection for dsn and applies every pending migration.
// Used by AUTO_MIGRATE and the integration tests.
func MigrateUp(ctx context.Context, dsn string) error {
	dbName, err := DatabaseName(dsn)
	if err != nil {
		return err
	}

	db, err := OpenSQL(ctx, DefaultPoolConfig(dsn))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	m, err := NewMigrator(db, dbName)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	_, err = m.Run(ActionUp, 0)
	return err
}

// Run executes one command. version is only read by ActionForce.
func (m *Migrator) Run(action Action, version int) (Status, error) {
	var err error
	switch action {
	case ActionUp:
		err = m.m.Up()
	case ActionDown:
		// one step at a time; dropping the whole schema is never what an operator wants
		err = m.m.Steps(-1)
	case ActionVersion:
	case ActionForce:
		if version <= 0 {
			return Status{}, errors.New("force needs a positive version")
		}
		err = m.m.Force(version)
	default:
		return Status{}, fmt.Errorf("unknown migration action %q (use: up, down, version, force)", action)
	}

	changed := action != ActionVersion
	if errors.Is(err, migrate.ErrNoChange) {
		changed, err = false, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("migrate %s: %w", action, err)
	}

	status, err := m.Status()
	status.Changed = changed
	return status, err
}

// Status reports the applied version; a fresh database is version 0
func (m *Migrator) Status() (Status, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("read migration version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Close releases the source and the database driver
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
