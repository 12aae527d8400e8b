package main

import (
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/PayFox/internal/pkg/database"
	"github.com/ManuelReschke/PayFox/internal/pkg/env"
	"github.com/ManuelReschke/PayFox/internal/pkg/logging"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the PayFox database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env.SetupEnvFile()
		logging.Setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", database.MigrationsDir, "directory holding one migrations folder per driver")
	rootCmd.AddCommand(upCmd, downCmd, gotoCmd, statusCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("[Migrate] %v", err)
		os.Exit(1)
	}
}
