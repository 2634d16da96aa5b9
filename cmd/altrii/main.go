package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amzibnewman/altrii-backend/internal/interfaces/cli/migrate"
	"github.com/amzibnewman/altrii-backend/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "altrii",
		Short: "Altrii - timer commitment backend",
		Long:  `Altrii locks devices behind MDM restrictions for user-chosen commitment periods. This binary serves the HTTP API, runs the expiry sweeper and manages database migrations.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
