package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/usecases"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/auth"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/config"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/email"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/provider"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/ratelimit"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/repository"
	devicehandler "github.com/amzibnewman/altrii-backend/internal/interfaces/http/handlers/device"
	timerhandler "github.com/amzibnewman/altrii-backend/internal/interfaces/http/handlers/timer"
	"github.com/amzibnewman/altrii-backend/internal/interfaces/http/middleware"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine         *gin.Engine
	timerHandler   *timerhandler.TimerHandler
	deviceHandler  *devicehandler.DeviceHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimitMW    *middleware.RateLimitMiddleware
}

// NewRouter wires repositories, usecases and handlers onto a gin engine.
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	commitmentRepo := repository.NewTimerCommitmentRepository(db, log)
	deviceRepo := repository.NewDeviceRepository(db, log)
	tierResolver := repository.NewSubscriptionTierResolver(db, log)
	userDirectory := repository.NewUserDirectory(db, log)

	gateway := provider.NewJamfClient(cfg.Provider, log)
	notifier := email.NewSMTPTimerNotifier(cfg.Email)

	createUC := usecases.NewCreateTimerCommitmentUseCase(commitmentRepo, deviceRepo, tierResolver, gateway, log)
	getActiveUC := usecases.NewGetActiveTimerUseCase(commitmentRepo, deviceRepo, gateway, log)
	manualExpireUC := usecases.NewManualExpireTimerUseCase(commitmentRepo, deviceRepo, gateway, notifier, userDirectory, log)
	limitsUC := usecases.NewGetTimerLimitsUseCase(tierResolver, log)
	historyUC := usecases.NewListTimerHistoryUseCase(commitmentRepo, deviceRepo, log)
	statsUC := usecases.NewGetTimerStatsUseCase(commitmentRepo, log)
	invitationUC := usecases.NewRequestEnrollmentInvitationUseCase(deviceRepo, userDirectory, gateway, log)

	handler := timerhandler.NewTimerHandler(createUC, getActiveUC, manualExpireUC, limitsUC, historyUC, statsUC)
	deviceHandler := devicehandler.NewDeviceHandler(invitationUC)

	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	authMW := middleware.NewAuthMiddleware(jwtService, log)

	limiter := ratelimit.NewRedisRateLimiter(redisClient)
	rateLimitMW := middleware.NewRateLimitMiddleware(limiter, log)

	return &Router{
		engine:         engine,
		timerHandler:   handler,
		deviceHandler:  deviceHandler,
		authMiddleware: authMW,
		rateLimitMW:    rateLimitMW,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes(cfg *config.Config) {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger(logger.NewLogger()))
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")
	timers := api.Group("/timers")
	timers.Use(r.authMiddleware.RequireAuth())
	{
		// Fixed paths come before the :deviceId wildcards.
		timers.GET("/limits", r.timerHandler.GetLimits)
		timers.GET("/history", r.timerHandler.GetHistory)
		timers.GET("/stats", r.timerHandler.GetStats)

		timers.POST("/:deviceId/create", r.timerHandler.CreateTimer)
		timers.GET("/:deviceId", r.timerHandler.GetActiveTimer)
		timers.POST("/:deviceId/emergency-cancel",
			r.rateLimitMW.LimitEmergencyCancel(),
			r.timerHandler.EmergencyCancel)
	}

	devices := api.Group("/devices")
	devices.Use(r.authMiddleware.RequireAuth())
	{
		devices.POST("/:deviceId/invitation", r.deviceHandler.RequestEnrollmentInvitation)
	}
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
