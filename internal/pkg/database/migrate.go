package database

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationsDir holds one directory of SQL migrations per driver.
const MigrationsDir = "migrations"

// MigrateURL renders the golang-migrate database URL.
func (c Config) MigrateURL() (string, error) {
	user := url.UserPassword(c.User, c.Password)
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("mysql://%s@tcp(%s:%s)/%s?multiStatements=true&parseTime=true",
			user.String(), c.Host, c.Port, c.Name), nil
	case DriverPostgres:
		return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s",
			user.String(), c.Host, c.Port, url.PathEscape(c.Name), url.QueryEscape(c.SSLMode)), nil
	}
	return "", fmt.Errorf("migrations are not supported for DB_DRIVER %q", c.Driver)
}

// MigrationSource is the file source URL of the driver's migrations below dir.
func (c Config) MigrationSource(dir string) string {
	return "file://" + filepath.ToSlash(filepath.Join(dir, c.Driver))
}

// NewMigrator opens golang-migrate on the configured store. Close it when done.
func NewMigrator(cfg Config, dir string) (*migrate.Migrate, error) {
	dbURL, err := cfg.MigrateURL()
	if err != nil {
		return nil, err
	}
	m, err := migrate.New(cfg.MigrationSource(dir), dbURL)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}

// IgnoreNoChange treats migrate.ErrNoChange as success.
func IgnoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
