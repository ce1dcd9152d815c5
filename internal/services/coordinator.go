package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"cinehub/internal/badges"
	"cinehub/internal/cache"
	"cinehub/internal/events"
	"cinehub/internal/metrics"
	"cinehub/internal/models"
	"cinehub/internal/repositories"
	"cinehub/internal/validation"

	"go.uber.org/zap"
)

// Dependencies are shared by the transactional services
type Dependencies struct {
	Store   repositories.Store
	Catalog *badges.Catalog
	Events  events.EventBus // optional
	Cache   cache.Cache     // optional
	Logger  *zap.Logger
	// Clock defaults to time.Now
	Clock         badges.Clock
	AnonymousName string
}

// coordinator holds what every transactional service shares: the store, the
// evaluator and the event bus. All counter and badge writes go through it.
type coordinator struct {
	store         repositories.Store
	catalog       *badges.Catalog
	evaluator     *badges.Evaluator
	events        events.EventBus
	logger        *zap.Logger
	now           badges.Clock
	anonymousName string
}

func newCoordinator(deps *Dependencies) *coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = badges.NewDefaultCatalog()
	}
	anonymousName := deps.AnonymousName
	if anonymousName == "" {
		anonymousName = "Anonymous"
	}
	return &coordinator{
		store:         deps.Store,
		catalog:       catalog,
		evaluator:     badges.NewEvaluator(catalog, now),
		events:        deps.Events,
		logger:        logger,
		now:           now,
		anonymousName: anonymousName,
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrAuthenticationRequired()
	}
	return nil
}

// validateRequest maps struct tag failures to a detailed validation error
func validateRequest(req interface{}) error {
	err := validation.ValidateStruct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make([]FieldError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, FieldError{Field: fe.Field, Message: fe.Message(), Code: fe.Tag})
		}
		return NewDetailedValidationError(fieldErrs.Error(), fields)
	}
	return NewValidationError("invalid request", err)
}

// runInTx executes fn and hides storage failures behind a persistence error.
// Service errors raised inside fn pass through unchanged.
func (c *coordinator) runInTx(ctx context.Context, operation string, fn repositories.TxFunc) error {
	err := c.store.RunInTx(ctx, fn)
	if err == nil {
		return nil
	}

	var valErr *ValidationError
	var svcErr *ServiceError
	if errors.As(err, &valErr) || errors.As(err, &svcErr) {
		return err
	}

	c.logger.Error("Transaction failed",
		zap.String("operation", operation),
		zap.String("store", c.store.Provider()),
		zap.Error(err),
	)
	return NewPersistenceError(err)
}

// loadProgress returns the user document, creating it on first use. The
// created document is not saved here; callers persist it with their changes.
func (c *coordinator) loadProgress(ctx context.Context, tx repositories.Tx, userID, nickname, photoURL string, now time.Time) (*models.UserProgress, bool, error) {
	progress, err := tx.GetUserProgress(ctx, userID)
	if err == nil {
		if progress.Stats == nil {
			progress.Stats = models.UserStats{}
		}
		return progress, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	return &models.UserProgress{
		UserID:       userID,
		Nickname:     nickname,
		PhotoURL:     photoURL,
		RegisteredAt: now,
		Stats:        models.UserStats{},
		EarnedBadges: models.BadgeIDs{},
		UpdatedAt:    now,
	}, true, nil
}

// ensureProgress makes sure the user document exists inside tx
func (c *coordinator) ensureProgress(ctx context.Context, tx repositories.Tx, userID string, now time.Time) error {
	progress, created, err := c.loadProgress(ctx, tx, userID, "", "", now)
	if err != nil || !created {
		return err
	}
	return tx.SaveUserProgress(ctx, progress)
}

// award runs the evaluator against progress and folds the result into the
// owned set. It returns the newly earned definitions and the ids retracted
// by tier reconciliation.
func (c *coordinator) award(progress *models.UserProgress, now time.Time) ([]models.BadgeDefinition, []string) {
	earned := c.evaluator.EvaluateAt(progress.Stats, progress.EarnedBadges, progress.RegisteredAt, now)
	if len(earned) == 0 {
		return nil, nil
	}

	before := progress.EarnedBadges
	after := badges.Award(before, earned)

	var retracted []string
	for _, id := range before {
		if !models.BadgeIDs(after).Contains(id) {
			retracted = append(retracted, id)
		}
	}

	progress.EarnedBadges = after
	return earned, retracted
}

// announce records and publishes awards after the transaction committed
func (c *coordinator) announce(ctx context.Context, userID string, earned []models.BadgeDefinition, retracted []string) {
	if len(earned) == 0 {
		return
	}

	awarded := make([]events.AwardedBadge, 0, len(earned))
	for _, def := range earned {
		metrics.BadgesAwarded.WithLabelValues(def.ID, string(def.Category)).Inc()
		awarded = append(awarded, events.AwardedBadge{ID: def.ID, Name: def.Name, Category: string(def.Category)})
	}

	c.logger.Info("Badges awarded",
		zap.String("user_id", userID),
		zap.Strings("badges", badgeIDs(earned)),
		zap.Strings("retracted", retracted),
	)

	c.publish(ctx, events.NewBadgesAwardedEvent(userID, awarded, retracted))
}

func (c *coordinator) publish(ctx context.Context, event events.Event) {
	if c.events == nil {
		return
	}
	if err := c.events.PublishAsync(ctx, event); err != nil {
		c.logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}

func badgeIDs(defs []models.BadgeDefinition) []string {
	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.ID)
	}
	return ids
}

func badgeNames(defs []models.BadgeDefinition) []string {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names
}

// Messages shown after a successful comment
const (
	MessageSuccess        = "SUCCESS"
	messageNewLevelPrefix = "Congratulations! New level: "
)

func celebrationMessage(earned []models.BadgeDefinition) string {
	if len(earned) == 0 {
		return MessageSuccess
	}
	return messageNewLevelPrefix + strings.Join(badgeNames(earned), ", ")
}

// uniqueGenres drops duplicate and non-positive genre ids, keeping order
func uniqueGenres(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
