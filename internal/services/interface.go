// file: internal/services/interfaces.go
package services

import (
	"context"

	"cinehub/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// InteractionService applies likes and watchlist changes to the shared aggregates
type InteractionService interface {
	ToggleInteraction(ctx context.Context, req *ToggleInteractionRequest) (*ToggleResult, error)
	// LikeItem toggles a favorite and adjusts the genre counters when the membership changed
	LikeItem(ctx context.Context, req *LikeItemRequest) (*ToggleResult, error)
	AdjustGenreStats(ctx context.Context, req *AdjustGenreStatsRequest) error

	CheckItemStatus(ctx context.Context, userID string, collection models.Collection, itemID string) (*ItemStatus, error)
	GetItemStats(ctx context.Context, itemID string) (*models.ItemStats, error)
	ListInteractions(ctx context.Context, userID string, collection models.Collection, params models.PaginationParams) ([]*models.Interaction, error)
}

// CommentService stores comments and grants the badges they earn
type CommentService interface {
	SubmitComment(ctx context.Context, req *SubmitCommentRequest) (*SubmitCommentResult, error)
	ListComments(ctx context.Context, req *ListCommentsRequest) ([]*models.Comment, error)
	ModerateComment(ctx context.Context, req *ModerateCommentRequest) (*models.Comment, error)
}

// ListService manages user-created lists
type ListService interface {
	CreateList(ctx context.Context, req *CreateListRequest) (*models.UserList, error)
	GetLists(ctx context.Context, userID string) ([]*models.UserList, error)
	GetList(ctx context.Context, userID, listID string) (*ListWithItems, error)
	AddItemToList(ctx context.Context, req *AddListItemRequest) (*AddListItemResult, error)
}

// ProfileService exposes statistics and badges
type ProfileService interface {
	RegisterUser(ctx context.Context, req *RegisterUserRequest) (*ProfileResponse, error)
	GetProfile(ctx context.Context, userID string) (*ProfileResponse, error)
	// RefreshLoyalty evaluates membership-length badges without any other change
	RefreshLoyalty(ctx context.Context, userID string) ([]models.BadgeDefinition, error)
	GetBadgeBoard(ctx context.Context, userID string) (*BadgeBoard, error)
	ListBadges(ctx context.Context) []models.BadgeDefinition
}
