package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/dashboard"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/progress"
	"github.com/edumart/edumart-server-go/internal/features/purchase"
	"github.com/edumart/edumart-server-go/internal/features/user"
	"github.com/edumart/edumart-server-go/pkg/cache"
	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/health"
	"github.com/edumart/edumart-server-go/pkg/identity"
	"github.com/edumart/edumart-server-go/pkg/media"
	"github.com/edumart/edumart-server-go/pkg/middleware"
	"github.com/edumart/edumart-server-go/pkg/payproc"
)

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, logger *slog.Logger, cacheClient cache.Client, payClient *payproc.Client, identityClient *identity.Client, mediaClient *media.Client) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	webhooks := api.Group("/webhooks")

	auth := middleware.Auth(cfg.JWTSecret, logger)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)
	requireEducator := middleware.RequireEducator(identityClient, logger)

	courseHandler := course.NewHandler(db, logger, mediaClient, cacheClient)
	course.RegisterRoutes(api, courseHandler, optionalAuth, auth, requireEducator)

	enrollmentHandler := enrollment.NewHandler(db, logger)
	enrollment.RegisterRoutes(api, enrollmentHandler, auth)

	progressHandler := progress.NewHandler(db, logger)
	progress.RegisterRoutes(api, progressHandler, auth)

	purchaseHandler := purchase.NewHandler(db, logger, payClient, cfg.Payment)
	purchase.RegisterRoutes(api, webhooks, purchaseHandler, auth)

	userHandler := user.NewHandler(db, logger, identityClient)
	user.RegisterRoutes(api, webhooks, userHandler, auth)

	dashboardHandler := dashboard.NewHandler(db, logger)
	dashboard.RegisterRoutes(api, dashboardHandler, auth, requireEducator)
}
