package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/usecases"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/config"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/database"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/email"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/migration"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/provider"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/repository"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/scheduler"
	httpRouter "github.com/amzibnewman/altrii-backend/internal/interfaces/http"
	"github.com/amzibnewman/altrii-backend/internal/shared/biztime"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
	noSweeper   bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server and expiry sweeper",
		Long:  `Start the Altrii timer commitment server with specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&noSweeper, "no-sweeper", false, "Disable the background expiry sweeper")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	biztime.MustInit("")

	logger.Info("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			logger.Warn("auto-migration is enabled in production environment - this is not recommended!")
		}
		scriptsPath, err := filepath.Abs("./internal/infrastructure/migration/scripts")
		if err != nil {
			return fmt.Errorf("failed to resolve migration scripts path: %w", err)
		}
		if err := migration.NewRunner(scriptsPath).Up(database.Get()); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	log := logger.NewLogger()

	router := httpRouter.NewRouter(database.Get(), redisClient, cfg, log)
	router.SetupRoutes(cfg)

	sweeper := buildSweeper(cfg, log)
	if noSweeper {
		logger.Info("expiry sweeper disabled by flag")
	} else {
		sweeper.Start(context.Background())
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Sweeper first so no sweep is mid-flight when the DB pool closes.
	if !noSweeper {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

func buildSweeper(cfg *config.Config, log logger.Interface) *scheduler.TimerCommitmentScheduler {
	db := database.Get()

	commitmentRepo := repository.NewTimerCommitmentRepository(db, log)
	deviceRepo := repository.NewDeviceRepository(db, log)
	userDirectory := repository.NewUserDirectory(db, log)

	gateway := provider.NewJamfClient(cfg.Provider, log)
	notifier := email.NewSMTPTimerNotifier(cfg.Email)

	expireUC := usecases.NewExpireTimersUseCase(commitmentRepo, deviceRepo, gateway, notifier, userDirectory, cfg.Sweeper.CallTimeout(), log)
	warnUC := usecases.NewSendExpirationWarningsUseCase(commitmentRepo, deviceRepo, notifier, userDirectory, cfg.Sweeper.WarningWindow(), cfg.Sweeper.CallTimeout(), log)

	return scheduler.NewTimerCommitmentScheduler(expireUC, warnUC, &cfg.Sweeper, log)
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod":
		return "release"
	case "development", "dev":
		return "debug"
	case "test", "testing":
		return "test"
	case "debug":
		return "debug"
	case "release":
		return "release"
	default:
		return "debug"
	}
}
