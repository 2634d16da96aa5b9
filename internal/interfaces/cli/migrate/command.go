package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amzibnewman/altrii-backend/internal/infrastructure/config"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/database"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/migration"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, rolling back, and checking status.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Rollback the most recent migration",
		RunE:  runDown,
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func initEnv() (*migration.Runner, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	scriptsPath, err := filepath.Abs("./internal/infrastructure/migration/scripts")
	if err != nil {
		return nil, fmt.Errorf("failed to get scripts path: %w", err)
	}

	return migration.NewRunner(scriptsPath), nil
}

func runUp(cmd *cobra.Command, args []string) error {
	runner, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	return runner.Up(database.Get())
}

func runDown(cmd *cobra.Command, args []string) error {
	runner, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	return runner.Down(database.Get())
}

func runStatus(cmd *cobra.Command, args []string) error {
	runner, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	return runner.Status(database.Get())
}
