package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/config"
	"github.com/Neo52000/ma-papeterie-sub003/internal/handler"
	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/middleware"
	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
	"github.com/Neo52000/ma-papeterie-sub003/internal/worker"
)

// Deps carries the wired object graph out of New so cmd/server can hand the
// shared pieces (dispatcher, repositories) to the worker pool and scheduler.
type Deps struct {
	Dispatcher  *worker.Dispatcher
	Rulesets    repository.RulesetRepository
	Simulations service.SimulationService
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, metrics *infra.Metrics) (*gin.Engine, *Deps) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	rulesetRepo := repository.NewRulesetRepository(db)
	productRepo := repository.NewProductRepository(db)
	simulationRepo := repository.NewSimulationRepository(db)
	priceLogRepo := repository.NewPriceLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	rulesetSvc := service.NewRulesetService(rulesetRepo)
	simulationSvc := service.NewSimulationService(
		rulesetRepo, productRepo, simulationRepo, metrics,
		cfg.SalesLookbackDays, cfg.PDFStoragePath,
	)
	applySvc := service.NewApplyService(simulationRepo, productRepo, priceLogRepo, metrics)
	rollbackSvc := service.NewRollbackService(simulationRepo, productRepo, priceLogRepo, metrics)
	priceLogSvc := service.NewPriceLogService(productRepo, priceLogRepo)

	// Worker dispatcher, injected into the handler that enqueues async runs
	dispatcher := worker.NewDispatcher(rdb, metrics)

	// ── Handlers ─────────────────────────────────────────────────────────────
	rulesetsH := handler.NewRulesetsHandler(rulesetSvc)
	simulationsH := handler.NewSimulationsHandler(simulationSvc, applySvc, rollbackSvc, dispatcher)
	priceLogsH := handler.NewPriceLogsHandler(priceLogSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes. Viewers read and simulate; only managers and admins
	// touch live prices or edit rulesets.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	read := middleware.RequireRole(middleware.RoleViewer, middleware.RoleManager, middleware.RoleAdmin)
	write := middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/rulesets", read, rulesetsH.List)
		v1.GET("/rulesets/:id", read, rulesetsH.Get)
		rulesets := v1.Group("/rulesets", write)
		{
			rulesets.POST("", rulesetsH.Create)
			rulesets.PUT("/:id", rulesetsH.Update)
			rulesets.DELETE("/:id", rulesetsH.Deactivate)
			rulesets.POST("/:id/rules", rulesetsH.AddRule)
			rulesets.PUT("/:id/rules/:rule_id", rulesetsH.UpdateRule)
			rulesets.DELETE("/:id/rules/:rule_id", rulesetsH.DeactivateRule)
		}

		// Simulation runs are heavier than plain reads, tighter limit.
		v1.POST("/simulations", read, middleware.RateLimiter(30, time.Minute), simulationsH.Run)
		v1.GET("/simulations", read, simulationsH.List)
		v1.GET("/simulations/:id", read, simulationsH.Get)
		v1.GET("/simulations/:id/report.pdf", read, simulationsH.ReportPDF)
		v1.POST("/simulations/:id/apply", write, simulationsH.Apply)
		v1.POST("/simulations/:id/rollback", write, simulationsH.Rollback)

		v1.GET("/products/:id/price-logs", read, priceLogsH.ListByProduct)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, &Deps{
		Dispatcher:  dispatcher,
		Rulesets:    rulesetRepo,
		Simulations: simulationSvc,
	}
}
