package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/PayFox/internal/pkg/database"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			err := m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("[Migrate] no change: database is up to date")
				return nil
			}
			if err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			log.Info("[Migrate] migrations applied")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Steps(-1); err != nil {
				return fmt.Errorf("roll back: %w", err)
			}
			log.Info("[Migrate] last migration rolled back")
			return nil
		})
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := database.IgnoreNoChange(m.Migrate(uint(version))); err != nil {
				return fmt.Errorf("migrate to version %d: %w", version, err)
			}
			log.Infof("[Migrate] database at version %d", version)
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current migration version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied yet")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read version: %w", err)
			}
			state := ""
			if dirty {
				state = " (dirty)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d%s\n", version, state)
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo users, providers and payment methods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := database.ConfigFromEnv()
		cfg.AutoMigrate = false
		db, err := database.SetupDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		res, err := database.Seed(cmd.Context(), db)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, u := range res.Users {
			fmt.Fprintf(out, "user      %s  %s (%s)\n", u.ID, u.Name, u.Phone)
		}
		for _, p := range res.Providers {
			fmt.Fprintf(out, "provider  %s  %s\n", p.ID, p.Name)
		}
		fmt.Fprintf(out, "%d payment methods\n", len(res.PaymentMethods))
		return nil
	},
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	cfg := database.ConfigFromEnv()
	log.Infof("[Migrate] connecting to %s %s@%s:%s/%s", cfg.Driver, cfg.User, cfg.Host, cfg.Port, cfg.Name)

	m, err := database.NewMigrator(cfg, migrationsDir)
	if err != nil {
		return err
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warnf("[Migrate] closing migration resources: %v, %v", sourceErr, dbErr)
		}
	}()
	return fn(m)
}
