package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinehub/internal/config"
	"cinehub/internal/database"
	"cinehub/internal/middleware"
	"cinehub/internal/repositories"
	"cinehub/internal/response"
	"cinehub/internal/router"
	"cinehub/internal/services"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("Starting CineHub API",
		zap.String("environment", cfg.Server.Environment),
		zap.String("store", cfg.Store.Provider),
		zap.String("cache", cfg.Cache.Provider),
	)

	// Initialize database
	var dbManager *database.Manager
	if cfg.Store.Provider == "postgres" {
		dbManager, err = database.NewManager(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}

		if cfg.Database.AutoMigrate {
			if err := dbManager.Migrate(cfg.Database.MigrationsPath); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		health := dbManager.Health(ctx)
		cancel()
		if health.Status != database.StatusHealthy {
			logger.Fatal("Database health check failed", zap.String("error", health.Error))
		}
		logger.Info("Database health check passed", zap.Duration("response_time", health.ResponseTime))
	}

	repos, err := repositories.NewCollection(cfg, dbManager, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repositories", zap.Error(err))
	}

	serviceCollection, err := services.NewServiceCollection(cfg, repos, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	if err := serviceCollection.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start services", zap.Error(err))
	}

	// Response builder and auth
	responseConfig := response.DefaultConfig()
	responseConfig.PrettyJSON = cfg.IsDevelopment()
	responseBuilder := response.NewBuilder(responseConfig, logger)

	authConfig := middleware.DefaultAuthConfig()
	authConfig.JWTSecret = cfg.Auth.JWTSecret
	authConfig.JWTIssuer = cfg.Auth.JWTIssuer
	authConfig.ModeratorRole = cfg.Auth.ModeratorRole
	authMiddleware := middleware.NewAuthMiddleware(authConfig, responseBuilder, logger)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; every authenticated endpoint will answer 401")
	}

	handler := router.SetupRouter(cfg, serviceCollection, authMiddleware, responseBuilder, logger)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", server.Addr),
			zap.String("health_check", "/health"),
			zap.String("metrics", cfg.Monitoring.MetricsPath),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sig := <-quit
	logger.Info("Shutting down server", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down services", zap.Error(err))
	}
	if dbManager != nil {
		if err := dbManager.Close(); err != nil {
			logger.Error("Failed to close database connections", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
