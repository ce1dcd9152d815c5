// ===============================
// FILE: internal/services/interaction_service.go
// ===============================

package services

import (
	"context"
	"errors"
	"time"

	"cinehub/internal/cache"
	"cinehub/internal/events"
	"cinehub/internal/metrics"
	"cinehub/internal/models"
	"cinehub/internal/repositories"

	"go.uber.org/zap"
)

// interactionService implements InteractionService
type interactionService struct {
	*coordinator
	cache  cache.Cache
	config *InteractionServiceConfig
}

// InteractionServiceConfig holds interaction service configuration
type InteractionServiceConfig struct {
	StatsCacheTTL time.Duration
}

// DefaultInteractionConfig returns default interaction service configuration
func DefaultInteractionConfig() *InteractionServiceConfig {
	return &InteractionServiceConfig{
		StatsCacheTTL: 30 * time.Second,
	}
}

// NewInteractionService creates a new interaction service
func NewInteractionService(deps *Dependencies, config *InteractionServiceConfig) InteractionService {
	if config == nil {
		config = DefaultInteractionConfig()
	}

	return &interactionService{
		coordinator: newCoordinator(deps),
		cache:       deps.Cache,
		config:      config,
	}
}

func itemStatsCacheKey(itemID string) string {
	return "item_stats:" + itemID
}

// ===============================
// TOGGLES
// ===============================

// ToggleInteraction adds or removes a membership. The aggregate only moves
// when the membership actually changed, so retries never double count.
func (s *interactionService) ToggleInteraction(ctx context.Context, req *ToggleInteractionRequest) (*ToggleResult, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var (
		result    *ToggleResult
		committed *models.ItemStats
	)
	err := s.runInTx(ctx, "toggle_interaction", func(ctx context.Context, tx repositories.Tx) error {
		now := s.now().UTC()
		result, committed = nil, nil

		if err := s.ensureProgress(ctx, tx, req.UserID, now); err != nil {
			return err
		}

		exists := true
		if _, err := tx.GetInteraction(ctx, req.UserID, req.Collection, req.ItemID); errors.Is(err, repositories.ErrNotFound) {
			exists = false
		} else if err != nil {
			return err
		}

		stats, err := tx.GetItemStats(ctx, req.ItemID)
		if errors.Is(err, repositories.ErrNotFound) {
			stats = &models.ItemStats{ItemID: req.ItemID}
		} else if err != nil {
			return err
		}

		if exists == req.IsAdding {
			result = &ToggleResult{Active: exists, LikeCount: stats.LikeCount}
			return nil
		}

		if req.IsAdding {
			err = tx.PutInteraction(ctx, &models.Interaction{
				UserID:     req.UserID,
				Collection: req.Collection,
				ItemID:     req.ItemID,
				Metadata:   req.Metadata,
				CreatedAt:  now,
			})
		} else {
			err = tx.DeleteInteraction(ctx, req.UserID, req.Collection, req.ItemID)
		}
		if err != nil {
			return err
		}

		if req.Collection.AffectsAggregate() {
			if req.IsAdding {
				stats.LikeCount++
				req.Metadata.MergeInto(stats)
			} else if stats.LikeCount > 0 {
				stats.LikeCount--
			}
			stats.UpdatedAt = now
			if err := tx.SaveItemStats(ctx, stats); err != nil {
				return err
			}
			committed = stats
		}

		result = &ToggleResult{Active: req.IsAdding, Changed: true, LikeCount: stats.LikeCount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "noop"
	if result.Changed {
		action = "remove"
		if result.Active {
			action = "add"
		}
		if committed != nil {
			s.storeStats(ctx, committed)
		}
		s.publish(ctx, events.NewInteractionToggledEvent(req.UserID, req.ItemID, string(req.Collection), result.Active, result.LikeCount))
	}
	metrics.InteractionToggles.WithLabelValues(string(req.Collection), action).Inc()

	s.logger.Debug("Interaction toggled",
		zap.String("user_id", req.UserID),
		zap.String("item_id", req.ItemID),
		zap.String("collection", string(req.Collection)),
		zap.String("action", action),
		zap.Int64("like_count", result.LikeCount),
	)

	return result, nil
}

// LikeItem toggles a favorite, then moves the genre counters when the like changed
func (s *interactionService) LikeItem(ctx context.Context, req *LikeItemRequest) (*ToggleResult, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	req.Collection = models.CollectionFavorites
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	result, err := s.ToggleInteraction(ctx, &req.ToggleInteractionRequest)
	if err != nil {
		return nil, err
	}

	genres := uniqueGenres(req.GenreIDs)
	if !result.Changed || len(genres) == 0 {
		return result, nil
	}

	adjust := &AdjustGenreStatsRequest{UserID: req.UserID, GenreIDs: genres, IsAdding: result.Active}
	if err := s.AdjustGenreStats(ctx, adjust); err != nil {
		// the like itself is committed; counters catch up on the next change
		s.logger.Warn("Failed to adjust genre stats after like",
			zap.String("user_id", req.UserID),
			zap.String("item_id", req.ItemID),
			zap.Error(err),
		)
	}

	return result, nil
}

// AdjustGenreStats moves each genre counter by one, clamped at zero. Badges
// are not evaluated here, so earned badges are never revoked.
func (s *interactionService) AdjustGenreStats(ctx context.Context, req *AdjustGenreStatsRequest) error {
	if err := requireUser(req.UserID); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	genres := uniqueGenres(req.GenreIDs)
	if len(genres) == 0 {
		return nil
	}

	delta := int64(1)
	if !req.IsAdding {
		delta = -1
	}

	return s.runInTx(ctx, "adjust_genre_stats", func(ctx context.Context, tx repositories.Tx) error {
		now := s.now().UTC()

		progress, _, err := s.loadProgress(ctx, tx, req.UserID, "", "", now)
		if err != nil {
			return err
		}

		for _, genreID := range genres {
			progress.Stats.Add(models.GenreCounterKey(genreID), delta)
		}
		progress.UpdatedAt = now

		return tx.SaveUserProgress(ctx, progress)
	})
}

// ===============================
// READS
// ===============================

// CheckItemStatus reports whether the item is in the user's collection
func (s *interactionService) CheckItemStatus(ctx context.Context, userID string, collection models.Collection, itemID string) (*ItemStatus, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !collection.Valid() {
		return nil, InvalidInputError("collection", "must be favorites or watchlist")
	}

	status := &ItemStatus{ItemID: itemID, Collection: collection}
	err := s.runInTx(ctx, "check_item_status", func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.GetInteraction(ctx, userID, collection, itemID)
		switch {
		case err == nil:
			status.Active = true
		case errors.Is(err, repositories.ErrNotFound):
			status.Active = false
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// GetItemStats returns the shared like count, zero for unknown items
func (s *interactionService) GetItemStats(ctx context.Context, itemID string) (*models.ItemStats, error) {
	if itemID == "" {
		return nil, InvalidInputError("item_id", "is required")
	}

	key := itemStatsCacheKey(itemID)
	if s.cache != nil {
		var cached models.ItemStats
		if cache.GetJSON(ctx, s.cache, key, &cached) {
			return &cached, nil
		}
	}

	var stats *models.ItemStats
	err := s.runInTx(ctx, "get_item_stats", func(ctx context.Context, tx repositories.Tx) error {
		found, err := tx.GetItemStats(ctx, itemID)
		if errors.Is(err, repositories.ErrNotFound) {
			stats = &models.ItemStats{ItemID: itemID}
			return nil
		}
		stats = found
		return err
	})
	if err != nil {
		return nil, err
	}

	// a toggle that committed meanwhile has already written a fresher value
	if s.cache != nil {
		if _, err := cache.SetJSONIfAbsent(ctx, s.cache, key, stats, s.config.StatsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache item stats", zap.String("item_id", itemID), zap.Error(err))
		}
	}

	return stats, nil
}

// ListInteractions returns the user's memberships in one collection
func (s *interactionService) ListInteractions(ctx context.Context, userID string, collection models.Collection, params models.PaginationParams) ([]*models.Interaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !collection.Valid() {
		return nil, InvalidInputError("collection", "must be favorites or watchlist")
	}

	items, err := s.store.ListInteractions(ctx, userID, collection, params)
	if err != nil {
		s.logger.Error("Failed to list interactions", zap.String("user_id", userID), zap.Error(err))
		return nil, NewPersistenceError(err)
	}
	return items, nil
}

// storeStats writes committed stats through to the cache. When the write
// fails the entry is dropped so readers fall back to the store.
func (s *interactionService) storeStats(ctx context.Context, stats *models.ItemStats) {
	if s.cache == nil {
		return
	}
	key := itemStatsCacheKey(stats.ItemID)
	if err := cache.SetJSON(ctx, s.cache, key, stats, s.config.StatsCacheTTL); err != nil {
		s.logger.Warn("Failed to refresh item stats", zap.String("item_id", stats.ItemID), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
	}
}
