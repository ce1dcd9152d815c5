// file: internal/services/types.go
package services

import (
	"time"

	"cinehub/internal/badges"
	"cinehub/internal/models"
)

// ===============================
// INTERACTION TYPES
// ===============================

// ToggleInteractionRequest adds or removes one catalog item from a user collection
type ToggleInteractionRequest struct {
	UserID     string              `json:"-"`
	ItemID     string              `json:"-" validate:"required,max=64"`
	Collection models.Collection   `json:"-" validate:"required,oneof=favorites watchlist"`
	IsAdding   bool                `json:"is_adding"`
	Metadata   models.ItemMetadata `json:"metadata"`
}

// ToggleResult reports the final membership state
type ToggleResult struct {
	Active bool `json:"active"`
	// Changed is false when the request matched the stored state
	Changed   bool  `json:"changed"`
	LikeCount int64 `json:"like_count"`
}

// LikeItemRequest toggles a favorite and moves the genre counters with it
type LikeItemRequest struct {
	ToggleInteractionRequest
	GenreIDs []int `json:"genre_ids" validate:"max=20"`
}

// AdjustGenreStatsRequest moves each genre counter by one
type AdjustGenreStatsRequest struct {
	UserID   string `json:"-"`
	GenreIDs []int  `json:"genre_ids" validate:"required,min=1,max=20"`
	IsAdding bool   `json:"is_adding"`
}

// ItemStatus reports whether an item is in a user collection
type ItemStatus struct {
	ItemID     string            `json:"item_id"`
	Collection models.Collection `json:"collection"`
	Active     bool              `json:"active"`
}

// ===============================
// COMMENT TYPES
// ===============================

// SubmitCommentRequest carries a new comment and the genres of the item it is about
type SubmitCommentRequest struct {
	UserID        string           `json:"-"`
	UserName      string           `json:"-"`
	UserAvatarURL string           `json:"-"`
	ItemID        string           `json:"-" validate:"required,max=64"`
	MediaType     models.MediaType `json:"media_type" validate:"required,oneof=movie tv"`
	Content       string           `json:"content" validate:"notblank"`
	Spoiler       bool             `json:"spoiler"`
	GenreIDs      []int            `json:"genre_ids" validate:"max=20"`
}

// SubmitCommentResult is returned when the comment and counters were persisted
type SubmitCommentResult struct {
	Comment   *models.Comment          `json:"comment"`
	NewBadges []models.BadgeDefinition `json:"new_badges"`
	Message   string                   `json:"message"`
}

// ListCommentsRequest selects visible comments for an item
type ListCommentsRequest struct {
	ItemID    string           `json:"-" validate:"required"`
	MediaType models.MediaType `json:"media_type" validate:"omitempty,oneof=movie tv"`
	ViewerID  string           `json:"-"`
	Limit     int              `json:"limit" validate:"min=0,max=100"`
	Offset    int              `json:"offset" validate:"min=0"`
}

// Moderation decisions
const (
	DecisionPublish = "publish"
	DecisionReject  = "reject"
)

// ModerateCommentRequest moves a pending comment to its final state
type ModerateCommentRequest struct {
	CommentID   string `json:"-" validate:"required,uuid"`
	ModeratorID string `json:"-"`
	Decision    string `json:"decision" validate:"required,oneof=publish reject"`
}

// ===============================
// LIST TYPES
// ===============================

// CreateListRequest creates a named custom list
type CreateListRequest struct {
	UserID string `json:"-"`
	Name   string `json:"name" validate:"notblank,max=100"`
}

// AddListItemRequest puts a catalog item in a custom list
type AddListItemRequest struct {
	UserID    string              `json:"-"`
	ListID    string              `json:"-" validate:"required,uuid"`
	ItemID    string              `json:"item_id" validate:"required,max=64"`
	MediaType models.MediaType    `json:"media_type" validate:"required,oneof=movie tv"`
	Metadata  models.ItemMetadata `json:"metadata"`
}

// AddListItemResult reports whether the item was new to the list
type AddListItemResult struct {
	List  *models.UserList `json:"list"`
	Added bool             `json:"added"`
}

// ListWithItems is a list together with its items
type ListWithItems struct {
	*models.UserList
	Items []*models.UserListItem `json:"items"`
}

// ===============================
// PROFILE TYPES
// ===============================

// RegisterUserRequest creates the user document on first sign-in
type RegisterUserRequest struct {
	UserID   string `json:"-"`
	Nickname string `json:"nickname" validate:"max=50"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url,max=500"`
}

// ProfileResponse is a user's statistics with resolved badge definitions
type ProfileResponse struct {
	UserID         string                   `json:"user_id"`
	Nickname       string                   `json:"nickname"`
	PhotoURL       string                   `json:"photo_url,omitempty"`
	RegisteredAt   time.Time                `json:"registered_at"`
	MembershipDays int64                    `json:"membership_days"`
	Stats          models.UserStats         `json:"stats"`
	Badges         []models.BadgeDefinition `json:"badges"`
	// NewBadges is filled when loading the profile granted loyalty tiers
	NewBadges []models.BadgeDefinition `json:"new_badges,omitempty"`
}

// BadgeBoard is the grouped badge view, header rows followed by their items
type BadgeBoard struct {
	Rows       []badges.Row `json:"rows"`
	OwnedCount int          `json:"owned_count"`
	TotalCount int          `json:"total_count"`
}
