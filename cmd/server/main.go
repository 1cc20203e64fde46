package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"agora/internal/config"
	"agora/internal/db"
	"agora/internal/logging"
	"agora/internal/middleware"
	"agora/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	if !cfg.DotEnvLoaded {
		log.Info("No .env file found, reading config from environment")
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL, db.Options{
		Logger:       logging.NewGormLogger(log),
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal("failed to connect database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	deps, err := router.NewDeps(conn, cfg.UserCacheSize)
	if err != nil {
		log.Fatal("failed to build services", zap.Error(err))
	}

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionName, store))

	router.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("agora server starting", zap.String("addr", srv.Addr), zap.String("driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
