// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"errors"

	"cinehub/internal/models"
)

// ErrNotFound is returned by point reads when the record does not exist
var ErrNotFound = errors.New("record not found")

// ErrUnknownUser is returned when a write references a user row that does not exist
var ErrUnknownUser = errors.New("referenced user does not exist")

// ===============================
// TRANSACTIONAL STORE
// ===============================

// Tx is the read-modify-write surface available inside a transaction.
// Reads observe the transaction's own writes.
type Tx interface {
	// Item aggregates
	GetItemStats(ctx context.Context, itemID string) (*models.ItemStats, error)
	SaveItemStats(ctx context.Context, stats *models.ItemStats) error

	// Per-user memberships
	GetInteraction(ctx context.Context, userID string, collection models.Collection, itemID string) (*models.Interaction, error)
	PutInteraction(ctx context.Context, interaction *models.Interaction) error
	DeleteInteraction(ctx context.Context, userID string, collection models.Collection, itemID string) error

	// User statistics and owned badges
	GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	SaveUserProgress(ctx context.Context, progress *models.UserProgress) error

	// Comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, commentID string) (*models.Comment, error)
	UpdateCommentStatus(ctx context.Context, commentID string, status models.CommentStatus) error

	// Custom lists
	GetList(ctx context.Context, userID, listID string) (*models.UserList, error)
	SaveList(ctx context.Context, list *models.UserList) error
	GetListItem(ctx context.Context, listID, itemID string) (*models.UserListItem, error)
	PutListItem(ctx context.Context, item *models.UserListItem) error
}

// TxFunc is a read-modify-write closure. It may run more than once and must
// keep all effects inside tx.
type TxFunc func(ctx context.Context, tx Tx) error

// Store runs transactions with automatic retry on conflict and serves the
// non-transactional list queries
type Store interface {
	RunInTx(ctx context.Context, fn TxFunc) error

	ListComments(ctx context.Context, filter CommentFilter) ([]*models.Comment, error)
	ListUserLists(ctx context.Context, userID string) ([]*models.UserList, error)
	ListListItems(ctx context.Context, listID string) ([]*models.UserListItem, error)
	ListInteractions(ctx context.Context, userID string, collection models.Collection, params models.PaginationParams) ([]*models.Interaction, error)

	Ping(ctx context.Context) error
	Provider() string
}

// CommentFilter selects comments for an item, newest first
type CommentFilter struct {
	ItemID    string
	MediaType models.MediaType
	// ViewerID additionally includes the viewer's own pending comments
	ViewerID string
	Limit    int
	Offset   int
}

func (f CommentFilter) visible(c *models.Comment) bool {
	if c.ItemID != f.ItemID {
		return false
	}
	if f.MediaType != "" && c.MediaType != f.MediaType {
		return false
	}
	if c.Status == models.CommentStatusPublished {
		return true
	}
	return f.ViewerID != "" && c.UserID == f.ViewerID && c.Status == models.CommentStatusPending
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
