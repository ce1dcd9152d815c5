// file: internal/services/service_collection.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"cinehub/internal/badges"
	"cinehub/internal/cache"
	"cinehub/internal/config"
	"cinehub/internal/events"
	"cinehub/internal/moderation"
	"cinehub/internal/repositories"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// ServiceCollection holds all services with their shared infrastructure
type ServiceCollection struct {
	// Core Services
	InteractionService InteractionService `json:"-"`
	CommentService     CommentService     `json:"-"`
	ListService        ListService        `json:"-"`
	ProfileService     ProfileService     `json:"-"`

	// Repository Collection
	Repositories *repositories.Collection `json:"-"`

	// Infrastructure Components
	Cache    cache.Cache     `json:"-"`
	EventBus events.EventBus `json:"-"`
	Catalog  *badges.Catalog `json:"-"`
	Logger   *zap.Logger     `json:"-"`
	Config   *config.Config  `json:"-"`

	startTime   time.Time
	shutdown    chan struct{}
	wg          sync.WaitGroup
	mu          sync.RWMutex
	initialized bool
}

// ServiceHealth represents the health status of the service collection
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Uptime       time.Duration            `json:"uptime"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus represents the status of an individual dependency
type ServiceStatus struct {
	Name         string                 `json:"name"`
	Status       string                 `json:"status"` // healthy, unhealthy
	LastCheck    time.Time              `json:"last_check"`
	ResponseTime time.Duration          `json:"response_time"`
	Error        string                 `json:"error,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Option customizes a ServiceCollection before its services are built
type Option func(*ServiceCollection, *Dependencies)

// WithCatalog replaces the default badge catalog
func WithCatalog(catalog *badges.Catalog) Option {
	return func(sc *ServiceCollection, deps *Dependencies) {
		sc.Catalog = catalog
		deps.Catalog = catalog
	}
}

// WithClock pins the time source used for timestamps and loyalty badges
func WithClock(clock badges.Clock) Option {
	return func(_ *ServiceCollection, deps *Dependencies) {
		deps.Clock = clock
	}
}

// NewServiceCollection builds the cache, the event bus and every service on
// top of the given repositories
func NewServiceCollection(
	cfg *config.Config,
	repos *repositories.Collection,
	logger *zap.Logger,
	opts ...Option,
) (*ServiceCollection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if repos == nil || repos.Store == nil {
		return nil, fmt.Errorf("repository collection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	collection := &ServiceCollection{
		Repositories: repos,
		Catalog:      badges.NewDefaultCatalog(),
		Logger:       logger,
		Config:       cfg,
		startTime:    time.Now(),
		shutdown:     make(chan struct{}),
	}

	if err := collection.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	deps := &Dependencies{
		Store:         repos.Store,
		Catalog:       collection.Catalog,
		Events:        collection.EventBus,
		Cache:         collection.Cache,
		Logger:        logger,
		AnonymousName: cfg.Gamification.AnonymousName,
	}
	for _, opt := range opts {
		opt(collection, deps)
	}

	collection.initializeServices(deps)

	if err := collection.subscribeHandlers(); err != nil {
		return nil, fmt.Errorf("failed to subscribe event handlers: %w", err)
	}

	collection.initialized = true
	logger.Info("Service collection initialized successfully",
		zap.String("store", repos.Store.Provider()),
		zap.String("cache", collection.Cache.Provider()),
		zap.Int("badges", collection.Catalog.Len()),
	)

	return collection, nil
}

// ===============================
// INITIALIZATION METHODS
// ===============================

func (sc *ServiceCollection) initializeInfrastructure() error {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Provider = sc.Config.Cache.Provider
	cacheConfig.RedisURL = sc.Config.Cache.RedisURL
	if sc.Config.Cache.DefaultTTL > 0 {
		cacheConfig.TTL = sc.Config.Cache.DefaultTTL
	}
	if sc.Config.Cache.MaxEntries > 0 {
		cacheConfig.MaxKeys = sc.Config.Cache.MaxEntries
	}

	c, err := cache.NewCache(cacheConfig, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	sc.Cache = c

	sc.EventBus = events.NewEventBus(events.DefaultEventBusConfig(), sc.Logger)
	return nil
}

func (sc *ServiceCollection) initializeServices(deps *Dependencies) {
	gamification := sc.Config.Gamification

	interactionConfig := DefaultInteractionConfig()
	if sc.Config.Cache.StatsTTL > 0 {
		interactionConfig.StatsCacheTTL = sc.Config.Cache.StatsTTL
	}
	sc.InteractionService = NewInteractionService(deps, interactionConfig)

	commentConfig := DefaultCommentConfig()
	commentConfig.MaxContentLength = gamification.CommentMaxLength
	commentConfig.MaxCommentsPerHour = gamification.CommentsPerHour
	filter := moderation.NewFilter(gamification.CommentDenylist, gamification.DenylistLocale)
	sc.CommentService = NewCommentService(deps, filter, commentConfig)

	sc.ListService = NewListService(deps)
	sc.ProfileService = NewProfileService(deps)
}

// subscribeHandlers wires the audit log for awarded badges
func (sc *ServiceCollection) subscribeHandlers() error {
	awards := events.NewTypedEventHandler("badge_award_audit", func(ctx context.Context, event *events.BadgesAwardedEvent) error {
		ids := make([]string, 0, len(event.Badges))
		for _, b := range event.Badges {
			ids = append(ids, b.ID)
		}
		sc.Logger.Info("Badge award recorded",
			zap.String("event_id", event.GetEventID()),
			zap.String("user_id", event.GetUserID()),
			zap.Strings("badges", ids),
			zap.Strings("retracted", event.Retracted),
		)
		return nil
	})
	if err := sc.EventBus.Subscribe(events.TypeBadgesAwarded, awards); err != nil {
		return err
	}

	comments := events.NewEventHandlerFunc("comment_audit", func(ctx context.Context, event events.Event) error {
		sc.Logger.Debug("Comment event",
			zap.String("event_type", event.GetEventType()),
			zap.String("user_id", event.GetUserID()),
		)
		return nil
	})
	return sc.EventBus.SubscribePattern("comment.*", comments)
}

// ===============================
// SERVICE LIFECYCLE MANAGEMENT
// ===============================

// Start starts the event workers and background health monitoring
func (sc *ServiceCollection) Start(ctx context.Context) error {
	if !sc.initialized {
		return fmt.Errorf("service collection not initialized")
	}

	if err := sc.EventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}

	if sc.Config.IsProduction() {
		sc.wg.Add(1)
		go sc.startHealthCheckMonitoring()
	}

	sc.Logger.Info("Service collection started successfully")
	return nil
}

// Shutdown stops background work and releases the cache and event bus
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	sc.mu.Lock()
	select {
	case <-sc.shutdown:
	default:
		close(sc.shutdown)
	}
	sc.mu.Unlock()

	var shutdownErrors []error

	done := make(chan struct{})
	go func() {
		sc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		shutdownErrors = append(shutdownErrors, fmt.Errorf("shutdown timeout exceeded"))
	}

	if err := sc.EventBus.Stop(ctx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("event bus stop: %w", err))
	}

	if err := sc.Cache.Close(); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
	}

	if len(shutdownErrors) > 0 {
		sc.Logger.Error("Errors occurred during shutdown", zap.Int("error_count", len(shutdownErrors)))
		return errors.Join(shutdownErrors...)
	}

	sc.Logger.Info("Service collection shutdown completed successfully")
	return nil
}

// ===============================
// HEALTH AND MONITORING
// ===============================

// HealthCheck probes the store, the cache and the event bus
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Dependencies: make(map[string]ServiceStatus),
		Uptime:       time.Since(sc.startTime),
	}

	checks := map[string]func(context.Context) error{
		"store": sc.Repositories.Store.Ping,
		"cache": sc.Cache.Health,
		"events": func(context.Context) error {
			return sc.EventBus.Health()
		},
	}

	var (
		mu sync.Mutex
		wg conc.WaitGroup
	)
	for name, check := range checks {
		wg.Go(func() {
			status := sc.checkDependency(ctx, name, check)

			mu.Lock()
			defer mu.Unlock()
			health.Dependencies[name] = status
			if status.Status != "healthy" {
				health.Issues = append(health.Issues, fmt.Sprintf("%s: %s", name, status.Error))
			}
		})
	}
	wg.Wait()
	sort.Strings(health.Issues)

	switch {
	case len(health.Issues) == 0:
		health.Status = "healthy"
	case health.Dependencies["store"].Status != "healthy":
		health.Status = "unhealthy"
	default:
		health.Status = "degraded"
	}

	return health
}

func (sc *ServiceCollection) checkDependency(ctx context.Context, name string, check func(context.Context) error) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{
		Name:      name,
		Status:    "healthy",
		LastCheck: start,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := check(checkCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	status.ResponseTime = time.Since(start)
	return status
}

func (sc *ServiceCollection) startHealthCheckMonitoring() {
	defer sc.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			health := sc.HealthCheck(ctx)
			cancel()

			if health.Status != "healthy" {
				sc.Logger.Warn("Service health degraded",
					zap.String("status", health.Status),
					zap.Strings("issues", health.Issues),
				)
			}

		case <-sc.shutdown:
			sc.Logger.Info("Health check monitoring stopped")
			return
		}
	}
}

// IsInitialized returns whether the service collection is fully initialized
func (sc *ServiceCollection) IsInitialized() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.initialized
}
