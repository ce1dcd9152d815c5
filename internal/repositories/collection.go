// file: internal/repositories/collection.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"cinehub/internal/config"
	"cinehub/internal/database"

	"go.uber.org/zap"
)

// Collection holds the store and the database it runs on, if any
type Collection struct {
	Store Store

	// nil for the memory provider
	db     *database.Manager
	logger *zap.Logger
}

// NewCollection builds the store selected by cfg.Store.Provider. The memory
// provider needs no database manager.
func NewCollection(cfg *config.Config, db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{db: db, logger: logger}

	switch cfg.Store.Provider {
	case "memory":
		collection.Store = NewMemoryStore(database.RetryPolicyFromConfig(&cfg.Database), logger)
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("database manager is required for the postgres store")
		}
		base := NewBaseRepository(logger, cfg.Database.SlowQueryThreshold)
		collection.Store = NewPostgresStore(db, base)
	default:
		return nil, fmt.Errorf("unsupported store provider %q", cfg.Store.Provider)
	}

	logger.Info("Repository collection initialized successfully",
		zap.String("store", collection.Store.Provider()),
		zap.Duration("slow_query_threshold", cfg.Database.SlowQueryThreshold),
	)

	return collection, nil
}

// ===============================
// HEALTH AND MONITORING
// ===============================

// HealthCheck probes the store and, for Postgres, the connection pool
func (c *Collection) HealthCheck(ctx context.Context) map[string]interface{} {
	health := make(map[string]interface{})

	start := time.Now()
	err := c.Store.Ping(ctx)
	store := map[string]interface{}{
		"provider": c.Store.Provider(),
		"duration": time.Since(start).String(),
		"healthy":  err == nil,
	}
	if err != nil {
		store["error"] = err.Error()
		c.logger.Warn("Store health check failed", zap.Error(err))
	}
	health["store"] = store

	if c.db != nil {
		health["database"] = c.db.Health(ctx)
	}

	return health
}

// Healthy reports whether the store answered a ping
func (c *Collection) Healthy(ctx context.Context) bool {
	return c.Store.Ping(ctx) == nil
}
