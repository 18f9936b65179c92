package postgres

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its base FS and dialect in package state
var gooseMu sync.Mutex

func gooseDialect(d Dialect) string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func prepareGoose(db *DB, migrationsFS fs.FS) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect(db.Dialect)); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}

// RunMigrations applies all pending migrations from the provided filesystem
func RunMigrations(db *DB, migrationsFS fs.FS) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepareGoose(db, migrationsFS); err != nil {
		return err
	}
	if err := goose.Up(db.DB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recent migration
func RollbackMigration(db *DB, migrationsFS fs.FS) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepareGoose(db, migrationsFS); err != nil {
		return err
	}
	if err := goose.Down(db.DB, "."); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version
func MigrationVersion(db *DB, migrationsFS fs.FS) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepareGoose(db, migrationsFS); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersion(db.DB)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}
