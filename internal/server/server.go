// Package server assembles the HTTP router: middleware, services, handlers
// and routes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/ryanuber/go-glob"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"spacebudget/internal/config"
	"spacebudget/internal/docs"
	"spacebudget/internal/events"
	"spacebudget/internal/handlers"
	"spacebudget/internal/logger"
	"spacebudget/internal/metrics"
	"spacebudget/internal/middleware"
	"spacebudget/internal/services"
)

// Options are the dependencies of the router.
type Options struct {
	Config    *config.Config
	DB        *gorm.DB
	Publisher events.Publisher
}

// New builds the router with every route registered.
func New(opts Options) *gin.Engine {
	cfg := opts.Config
	db := opts.DB
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	loc := cfg.BusinessLocation
	if loc == nil {
		loc = config.FixedZone(9)
	}

	// Services
	spaceService := services.NewSpaceService(db)
	profileService := services.NewProfileService(db)
	categoryService := services.NewCategoryService(db, spaceService)
	holdingService := services.NewHoldingService(db, spaceService)
	transactionService := services.NewTransactionService(db, spaceService, loc)
	budgetService := services.NewBudgetService(db, spaceService, loc)
	summaryService := services.NewSummaryService(db, spaceService, loc)
	exportService := services.NewExportService(db, spaceService, loc)
	auditService := services.NewAuditService(db)

	// Handlers
	profileHandler := handlers.NewProfileHandler(profileService, auditService)
	spaceHandler := handlers.NewSpaceHandler(spaceService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, exportService, auditService, publisher)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService, publisher)
	summaryHandler := handlers.NewSummaryHandler(summaryService)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(metrics.Middleware())
	router.Use(middleware.RequestLogging())
	router.Use(corsMiddleware(cfg.CORSAllowOrigins))
	router.Use(middleware.ErrorHandler())

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.APIKeyAuth(cfg.MetricsAPIKey), gin.WrapH(metrics.Handler()))
	router.GET("/api/health", healthCheck(db))

	if cfg.EnablePprof {
		pprof.Register(router)
	}

	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(middleware.NewVerifier(cfg)))

	protected.GET("/profile", profileHandler.GetProfile)
	protected.PUT("/profile", profileHandler.UpsertProfile)

	protected.GET("/spaces", spaceHandler.ListSpaces)
	protected.POST("/spaces", spaceHandler.CreateSpace)

	space := protected.Group("/spaces/:slug")
	space.GET("", spaceHandler.GetSpace)
	space.PUT("", spaceHandler.UpdateSpace)
	space.GET("/members", spaceHandler.ListMembers)
	space.POST("/members", spaceHandler.AddMember)
	space.DELETE("/members/:userId", spaceHandler.RemoveMember)

	space.GET("/categories", categoryHandler.ListCategories)
	space.POST("/categories", categoryHandler.CreateCategory)
	space.PUT("/categories/:id", categoryHandler.UpdateCategory)
	space.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	space.GET("/holdings", holdingHandler.ListHoldings)
	space.POST("/holdings", holdingHandler.CreateHolding)
	space.PUT("/holdings/:id", holdingHandler.UpdateHolding)
	space.DELETE("/holdings/:id", holdingHandler.DeleteHolding)

	space.GET("/transactions", transactionHandler.ListTransactions)
	space.POST("/transactions", transactionHandler.CreateTransaction)
	space.GET("/transactions/export", transactionHandler.ExportTransactions)
	space.GET("/transactions/:id", transactionHandler.GetTransaction)
	space.PATCH("/transactions/:id", transactionHandler.UpdateTransaction)
	space.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	space.GET("/budgets", budgetHandler.ListBudgets)
	space.PUT("/budgets", budgetHandler.UpsertBudget)
	space.DELETE("/budgets", budgetHandler.DeleteBudget)
	space.GET("/budgets/history", budgetHandler.ListBudgetHistory)

	space.GET("/summary", summaryHandler.MonthSummary)
	space.GET("/form-options", summaryHandler.FormOptions)

	return router
}

// corsMiddleware allows origins matching any of the glob patterns, such as
// "https://*.example.com".
func corsMiddleware(patterns []string) gin.HandlerFunc {
	logger.Get().Debugw("cors allowed origins", "patterns", patterns)

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, pattern := range patterns {
				if glob.Glob(pattern, origin) {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger.Get().Errorw("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
