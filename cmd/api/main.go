package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	"github.com/BruksfildServices01/barberflow/internal/auth"
	"github.com/BruksfildServices01/barberflow/internal/cache"
	"github.com/BruksfildServices01/barberflow/internal/config"
	dbpkg "github.com/BruksfildServices01/barberflow/internal/db"
	"github.com/BruksfildServices01/barberflow/internal/logger"
	"github.com/BruksfildServices01/barberflow/internal/metrics"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	"github.com/BruksfildServices01/barberflow/internal/routes"
)

func main() {
	cfg := config.Load()

	log, cleanup := logger.New(cfg.LogLevel, cfg.LogJSON, cfg.LogFile)
	defer cleanup()

	if cfg.JWTSecret == "changeme" {
		log.Warn("JWT_SECRET is the default value; set it outside development")
	}

	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}

	var catalog *cache.Cache
	if cfg.RedisAddr != "" {
		catalog = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CatalogCacheTTL, log)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := catalog.Ping(ctx); err != nil {
			log.Warn("redis unreachable, catalog served from the database", zap.Error(err))
		}
		cancel()
		defer catalog.Close()
	}

	dispatcher := audit.NewDispatcher(audit.New(db), log)

	if cfg.LogJSON {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		ginzap.RecoveryWithZap(log, true),
		middleware.RequestID(),
		logger.Middleware(log),
		metrics.Middleware(),
		middleware.CORSMiddleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	routes.RegisterRoutes(r, routes.Deps{
		DB:     db,
		Config: cfg,
		Tokens: auth.NewTokens(cfg.JWTSecret),
		Cache:  catalog,
		Audit:  dispatcher,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start failed", zap.Error(err))
		}
	}()
	log.Info("server running", zap.String("addr", cfg.Addr()), zap.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	dispatcher.Close()
	log.Info("server stopped")
}
