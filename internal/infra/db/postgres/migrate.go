package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newMigrator(dsn string) (*migrate.Migrate, *sql.DB, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	driver, err := mpostgres.WithInstance(db, &mpostgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, db, nil
}

// MigrateUp applies every pending migration embedded in the binary.
func MigrateUp(dsn string, logger *zerolog.Logger) error {
	m, db, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	fromVer, _, _ := m.Version()
	start := time.Now()
	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info().Uint("version", fromVer).Msg("schema up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	}
	toVer, _, _ := m.Version()
	logger.Info().Uint("from_ver", fromVer).Uint("to_ver", toVer).Dur("duration", time.Since(start)).Msg("migrations applied")
	return nil
}

// MigrateDown rolls back steps migrations.
func MigrateDown(dsn string, steps int, logger *zerolog.Logger) error {
	if steps <= 0 {
		steps = 1
	}
	m, db, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	ver, dirty, _ := m.Version()
	logger.Info().Uint("version", ver).Bool("dirty", dirty).Int("steps", steps).Msg("migrations rolled back")
	return nil
}
