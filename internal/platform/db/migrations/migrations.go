// Package migrations applies the embedded schema to PostgreSQL.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// Source opens the embedded migrations as a migrate source driver.
func Source() (source.Driver, error) {
	return iofs.New(files, ".")
}

// Versions lists the embedded migration versions in apply order.
func Versions() ([]uint, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return nil, err
	}
	versions := []uint{version}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return versions, nil
		}
		if err != nil {
			return nil, err
		}
		versions = append(versions, next)
		version = next
	}
}

// Apply migrates db up to the latest embedded version and returns it. db must
// be opened through the pgx stdlib driver. Apply closes db when it is done.
func Apply(ctx context.Context, db *sql.DB) (uint, error) {
	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("migrations: ping: %w", err)
	}
	src, err := Source()
	if err != nil {
		return 0, fmt.Errorf("migrations: source: %w", err)
	}
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return 0, fmt.Errorf("migrations: driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return 0, fmt.Errorf("migrations: init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrations: up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("migrations: version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migrations: schema dirty at version %d", version)
	}
	return version, nil
}
