package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apirest "shelftrack/api/rest"
	"shelftrack/audit"
	"shelftrack/cache"
	"shelftrack/config"
	"shelftrack/core/inspection"
	"shelftrack/core/inventory"
	"shelftrack/core/registry"
	"shelftrack/core/stats"
	dbadapter "shelftrack/db"
	mw "shelftrack/middleware"
	"shelftrack/model"
	"shelftrack/scheduler"
	"shelftrack/storage"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		logger.Warn("security.jwt_secret is not set; tokens are signed with an empty secret")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Session cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Uploads ----
	uploads, err := storage.NewUploads(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	// ---- Engine ----
	reg := registry.New(db, logger)
	mgr := inventory.NewManager(db, reg, logger)
	insp := inspection.NewProcessor(db, logger)
	agg := stats.NewAggregator(db, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("overdue_inspections", cfg.Inspections.OverdueSweepInterval, func() {
		overdue, dangling := insp.OverdueSweep(context.Background())
		if overdue > 0 || dangling > 0 {
			logger.Info("overdue sweep finished",
				zap.Int("overdue", overdue),
				zap.Int("dangling", dangling))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger), mw.Metrics())
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded images are served statically; the API only stores their paths.
	r.Static("/uploads", uploads.Dir())

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	shelfH := apirest.NewShelfHandler(reg, auditSvc)
	matH := apirest.NewMaterialHandler(mgr, uploads, auditSvc)
	inspH := apirest.NewInspectionHandler(insp, auditSvc)
	statsH := apirest.NewStatsHandler(agg)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		shelvesG := api.Group("/shelves")
		shelvesG.Use(mw.Auth(cfg.Security, c))
		shelvesG.POST("", shelfH.Create)
		shelvesG.GET("", shelfH.List)
		shelvesG.GET("/:id", shelfH.Get)
		shelvesG.DELETE("/:id", shelfH.Delete)

		materialsG := api.Group("/materials")
		materialsG.Use(mw.Auth(cfg.Security, c))
		materialsG.POST("", matH.Create)
		materialsG.GET("", matH.List)
		materialsG.GET("/:id", matH.Get)
		materialsG.PUT("/:id", matH.Update)
		materialsG.DELETE("/:id", matH.Delete)

		inspectionsG := api.Group("/inspections")
		inspectionsG.Use(mw.Auth(cfg.Security, c))
		inspectionsG.POST("", inspH.Create)
		inspectionsG.GET("", inspH.List)

		api.GET("/stats", mw.Auth(cfg.Security, c), statsH.Get)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
