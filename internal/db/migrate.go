package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-adopt/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// requiredTables must exist once the schema is applied.
var requiredTables = []string{"users", "shelters", "shelter_managers", "animals", "adoption_requests"}

// Migrate runs AutoMigrate for all models.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Shelter{},
		&models.ShelterManager{},
		&models.Animal{},
		&models.AdoptionRequest{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return CheckSchema(conn)
}

// MigrateSQL applies the versioned SQL files to a Postgres database given
// in URL form.
func MigrateSQL(databaseURL string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// CheckSchema verifies the core tables exist.
func CheckSchema(conn *gorm.DB) error {
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
