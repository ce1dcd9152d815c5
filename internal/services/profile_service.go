// ===============================
// FILE: internal/services/profile_service.go
// ===============================

package services

import (
	"context"
	"errors"
	"strings"

	"cinehub/internal/badges"
	"cinehub/internal/events"
	"cinehub/internal/models"
	"cinehub/internal/repositories"

	"go.uber.org/zap"
)

// profileService implements ProfileService
type profileService struct {
	*coordinator
}

// NewProfileService creates a new profile service
func NewProfileService(deps *Dependencies) ProfileService {
	return &profileService{coordinator: newCoordinator(deps)}
}

// RegisterUser creates the user document on first sign-in. Calling it again
// only fills in a missing nickname or photo.
func (s *profileService) RegisterUser(ctx context.Context, req *RegisterUserRequest) (*ProfileResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var (
		progress *models.UserProgress
		created  bool
	)
	err := s.runInTx(ctx, "register_user", func(ctx context.Context, tx repositories.Tx) error {
		now := s.now().UTC()

		found, isNew, err := s.loadProgress(ctx, tx, req.UserID, strings.TrimSpace(req.Nickname), req.PhotoURL, now)
		if err != nil {
			return err
		}
		progress, created = found, isNew

		changed := isNew
		if progress.Nickname == "" && strings.TrimSpace(req.Nickname) != "" {
			progress.Nickname = strings.TrimSpace(req.Nickname)
			changed = true
		}
		if progress.PhotoURL == "" && req.PhotoURL != "" {
			progress.PhotoURL = req.PhotoURL
			changed = true
		}
		if !changed {
			return nil
		}
		progress.UpdatedAt = now
		return tx.SaveUserProgress(ctx, progress)
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.publish(ctx, events.NewUserRegisteredEvent(req.UserID, progress.Nickname))
		s.logger.Info("User registered", zap.String("user_id", req.UserID))
	}

	return s.toProfile(progress, nil), nil
}

// GetProfile returns statistics and owned badges. Loyalty tiers that became
// due since the last visit are granted on the way.
func (s *profileService) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	progress, earned, err := s.refresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toProfile(progress, earned), nil
}

// RefreshLoyalty evaluates the catalog without changing any counter
func (s *profileService) RefreshLoyalty(ctx context.Context, userID string) ([]models.BadgeDefinition, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	_, earned, err := s.refresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	if earned == nil {
		earned = []models.BadgeDefinition{}
	}
	return earned, nil
}

func (s *profileService) refresh(ctx context.Context, userID string) (*models.UserProgress, []models.BadgeDefinition, error) {
	var (
		progress  *models.UserProgress
		earned    []models.BadgeDefinition
		retracted []string
	)
	err := s.runInTx(ctx, "refresh_loyalty", func(ctx context.Context, tx repositories.Tx) error {
		now := s.now().UTC()

		found, err := tx.GetUserProgress(ctx, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("user", userID)
		} else if err != nil {
			return err
		}
		progress = found

		earned, retracted = s.award(progress, now)
		if len(earned) == 0 {
			return nil
		}
		progress.UpdatedAt = now
		return tx.SaveUserProgress(ctx, progress)
	})
	if err != nil {
		return nil, nil, err
	}

	s.announce(ctx, userID, earned, retracted)
	return progress, earned, nil
}

// GetBadgeBoard lays out the whole catalog with the user's badges marked owned
func (s *profileService) GetBadgeBoard(ctx context.Context, userID string) (*BadgeBoard, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var owned []string
	err := s.runInTx(ctx, "badge_board", func(ctx context.Context, tx repositories.Tx) error {
		progress, err := tx.GetUserProgress(ctx, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			owned = nil
			return nil
		} else if err != nil {
			return err
		}
		owned = progress.EarnedBadges
		return nil
	})
	if err != nil {
		return nil, err
	}

	all := s.catalog.All()
	return &BadgeBoard{
		Rows:       badges.Group(all, owned),
		OwnedCount: len(s.catalog.OwnedDefinitions(owned)),
		TotalCount: len(all),
	}, nil
}

// ListBadges returns the catalog in order
func (s *profileService) ListBadges(ctx context.Context) []models.BadgeDefinition {
	return s.catalog.All()
}

func (s *profileService) toProfile(progress *models.UserProgress, earned []models.BadgeDefinition) *ProfileResponse {
	stats := progress.Stats
	if stats == nil {
		stats = models.UserStats{}
	}
	return &ProfileResponse{
		UserID:         progress.UserID,
		Nickname:       progress.Nickname,
		PhotoURL:       progress.PhotoURL,
		RegisteredAt:   progress.RegisteredAt,
		MembershipDays: badges.MembershipDays(progress.RegisteredAt, s.now()),
		Stats:          stats,
		Badges:         s.catalog.OwnedDefinitions(progress.EarnedBadges),
		NewBadges:      earned,
	}
}
