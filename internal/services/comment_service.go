// ===============================
// FILE: internal/services/comment_service.go
// ===============================

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cinehub/internal/cache"
	"cinehub/internal/events"
	"cinehub/internal/metrics"
	"cinehub/internal/models"
	"cinehub/internal/moderation"
	"cinehub/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// commentService implements CommentService
type commentService struct {
	*coordinator
	filter *moderation.Filter
	cache  cache.Cache
	config *CommentServiceConfig
}

// CommentServiceConfig holds comment service configuration
type CommentServiceConfig struct {
	MaxContentLength   int
	MaxCommentsPerHour int // zero disables the limit
}

// DefaultCommentConfig returns default comment service configuration
func DefaultCommentConfig() *CommentServiceConfig {
	return &CommentServiceConfig{
		MaxContentLength:   2000,
		MaxCommentsPerHour: 30,
	}
}

// NewCommentService creates a new comment service. A nil filter allows everything but blank content.
func NewCommentService(deps *Dependencies, filter *moderation.Filter, config *CommentServiceConfig) CommentService {
	if config == nil {
		config = DefaultCommentConfig()
	}
	if filter == nil {
		filter = moderation.NewFilter(nil, "und")
	}

	return &commentService{
		coordinator: newCoordinator(deps),
		filter:      filter,
		cache:       deps.Cache,
		config:      config,
	}
}

// ===============================
// SUBMISSION
// ===============================

// SubmitComment stores a pending comment and, in the same transaction, bumps
// the comment and genre counters and grants any badges they qualify for.
// Nothing is written when validation fails.
func (s *commentService) SubmitComment(ctx context.Context, req *SubmitCommentRequest) (*SubmitCommentResult, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	if err := s.validateSubmission(req); err != nil {
		metrics.CommentsSubmitted.WithLabelValues("rejected").Inc()
		return nil, err
	}

	limitKey := s.rateLimitKey(req.UserID)
	if err := s.checkRateLimit(ctx, limitKey); err != nil {
		metrics.CommentsSubmitted.WithLabelValues("rate_limited").Inc()
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, NewPersistenceError(fmt.Errorf("failed to generate comment id: %w", err))
	}
	genres := uniqueGenres(req.GenreIDs)

	var (
		comment   *models.Comment
		earned    []models.BadgeDefinition
		retracted []string
	)
	err = s.runInTx(ctx, "submit_comment", func(ctx context.Context, tx repositories.Tx) error {
		now := s.now().UTC()

		progress, created, err := s.loadProgress(ctx, tx, req.UserID, req.UserName, req.UserAvatarURL, now)
		if err != nil {
			return err
		}
		// comments reference the user row
		if created {
			if err := tx.SaveUserProgress(ctx, progress); err != nil {
				return err
			}
		}

		comment = &models.Comment{
			ID:            id.String(),
			ItemID:        req.ItemID,
			MediaType:     req.MediaType,
			UserID:        req.UserID,
			UserName:      s.displayName(req.UserName, progress.Nickname),
			UserAvatarURL: firstNonBlank(req.UserAvatarURL, progress.PhotoURL),
			Content:       strings.TrimSpace(req.Content),
			Status:        models.CommentStatusPending,
			Spoiler:       req.Spoiler,
			CreatedAt:     now,
		}
		if err := tx.CreateComment(ctx, comment); err != nil {
			return err
		}

		progress.Stats.Add(models.CounterTotalComments, 1)
		for _, genreID := range genres {
			progress.Stats.Add(models.GenreCounterKey(genreID), 1)
		}

		earned, retracted = s.award(progress, now)
		progress.UpdatedAt = now

		return tx.SaveUserProgress(ctx, progress)
	})
	if err != nil {
		s.releaseRateLimit(ctx, limitKey)
		metrics.CommentsSubmitted.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.CommentsSubmitted.WithLabelValues("accepted").Inc()
	s.publish(ctx, events.NewCommentSubmittedEvent(req.UserID, comment.ID, comment.ItemID, string(comment.MediaType), genres))
	s.announce(ctx, req.UserID, earned, retracted)

	s.logger.Info("Comment submitted",
		zap.String("comment_id", comment.ID),
		zap.String("user_id", req.UserID),
		zap.String("item_id", req.ItemID),
		zap.Int("new_badges", len(earned)),
	)

	comment.IsOwner = true
	if earned == nil {
		earned = []models.BadgeDefinition{}
	}
	return &SubmitCommentResult{
		Comment:   comment,
		NewBadges: earned,
		Message:   celebrationMessage(earned),
	}, nil
}

func (s *commentService) validateSubmission(req *SubmitCommentRequest) error {
	if err := s.filter.Check(req.Content); err != nil {
		switch {
		case errors.Is(err, moderation.ErrBlankContent):
			return NewValidationError("Comment cannot be empty", err)
		case errors.Is(err, moderation.ErrDeniedContent):
			return NewValidationError("Your comment contains words that are not allowed", err)
		default:
			return NewValidationError("Comment was rejected", err)
		}
	}

	if s.config.MaxContentLength > 0 && utf8.RuneCountInString(strings.TrimSpace(req.Content)) > s.config.MaxContentLength {
		return InvalidInputError("content", fmt.Sprintf("must be at most %d characters", s.config.MaxContentLength))
	}

	return validateRequest(req)
}

// checkRateLimit counts comments per user in fixed hourly windows
func (s *commentService) checkRateLimit(ctx context.Context, key string) error {
	if s.cache == nil || s.config.MaxCommentsPerHour <= 0 {
		return nil
	}

	count, err := s.cache.Increment(ctx, key, 1)
	if err != nil {
		// fail open, the limit only protects against floods
		s.logger.Warn("Comment rate limit unavailable", zap.String("key", key), zap.Error(err))
		return nil
	}
	if count == 1 {
		if err := s.cache.SetTTL(ctx, key, time.Hour); err != nil {
			s.logger.Warn("Failed to set rate limit TTL", zap.String("key", key), zap.Error(err))
		}
	}

	if count > int64(s.config.MaxCommentsPerHour) {
		return NewRateLimitError("Too many comments, please wait a while", map[string]interface{}{
			"limit":  s.config.MaxCommentsPerHour,
			"window": "1h",
		})
	}
	return nil
}

// releaseRateLimit gives back the slot taken by a submission that did not commit
func (s *commentService) releaseRateLimit(ctx context.Context, key string) {
	if s.cache == nil || s.config.MaxCommentsPerHour <= 0 {
		return
	}
	if _, err := s.cache.Increment(ctx, key, -1); err != nil {
		s.logger.Warn("Failed to release rate limit slot", zap.String("key", key), zap.Error(err))
	}
}

func (s *commentService) rateLimitKey(userID string) string {
	window := s.now().UTC().Truncate(time.Hour)
	return fmt.Sprintf("rate:comments:%s:%d", userID, window.Unix())
}

func (s *commentService) displayName(candidates ...string) string {
	if name := firstNonBlank(candidates...); name != "" {
		return name
	}
	return s.anonymousName
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ===============================
// QUERIES
// ===============================

// ListComments returns published comments for an item, plus the viewer's own pending ones
func (s *commentService) ListComments(ctx context.Context, req *ListCommentsRequest) ([]*models.Comment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, repositories.CommentFilter{
		ItemID:    req.ItemID,
		MediaType: req.MediaType,
		ViewerID:  req.ViewerID,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		s.logger.Error("Failed to list comments", zap.String("item_id", req.ItemID), zap.Error(err))
		return nil, NewPersistenceError(err)
	}

	for _, c := range comments {
		c.IsOwner = req.ViewerID != "" && c.UserID == req.ViewerID
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// ===============================
// MODERATION
// ===============================

// ModerateComment publishes or rejects a pending comment
func (s *commentService) ModerateComment(ctx context.Context, req *ModerateCommentRequest) (*models.Comment, error) {
	if err := requireUser(req.ModeratorID); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	next := models.CommentStatusPublished
	if req.Decision == DecisionReject {
		next = models.CommentStatusRejected
	}

	var comment *models.Comment
	err := s.runInTx(ctx, "moderate_comment", func(ctx context.Context, tx repositories.Tx) error {
		found, err := tx.GetComment(ctx, req.CommentID)
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("comment", req.CommentID)
		} else if err != nil {
			return err
		}

		if !found.Status.CanTransitionTo(next) {
			return NewBusinessError(
				fmt.Sprintf("Comment is already %s", found.Status),
				"INVALID_STATUS_TRANSITION",
			)
		}

		if err := tx.UpdateCommentStatus(ctx, req.CommentID, next); err != nil {
			return err
		}
		found.Status = next
		comment = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewCommentModeratedEvent(req.ModeratorID, comment.ID, comment.ItemID, comment.Status.String()))
	s.logger.Info("Comment moderated",
		zap.String("comment_id", comment.ID),
		zap.String("moderator_id", req.ModeratorID),
		zap.String("status", comment.Status.String()),
	)

	return comment, nil
}
