// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ===============================
// STATISTICS
// ===============================

// Counter keys used in a user's statistics snapshot
const (
	CounterTotalComments = "total_comments"
	genreCounterPrefix   = "genre_"
)

// GenreCounterKey returns the statistics key for a genre id, e.g. "genre_28"
func GenreCounterKey(genreID int) string {
	return genreCounterPrefix + strconv.Itoa(genreID)
}

// UserStats maps counter keys to non-negative counts. Stored as JSONB.
type UserStats map[string]int64

// Get returns the counter value, zero when absent
func (s UserStats) Get(key string) int64 {
	return s[key]
}

// Add applies delta to a counter and clamps the result at zero
func (s UserStats) Add(key string, delta int64) int64 {
	next := s[key] + delta
	if next < 0 {
		next = 0
	}
	s[key] = next
	return next
}

// Clone returns an independent copy
func (s UserStats) Clone() UserStats {
	out := make(UserStats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Scan implements sql.Scanner
func (s *UserStats) Scan(value interface{}) error {
	*s = UserStats{}
	if value == nil {
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into UserStats", value)
	}
	return json.Unmarshal(raw, s)
}

// Value implements driver.Valuer
func (s UserStats) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return jsonValue(s)
}

// BadgeIDs is an ordered list of owned badge ids. Stored as JSONB.
type BadgeIDs []string

// Contains reports whether id is owned
func (b BadgeIDs) Contains(id string) bool {
	for _, owned := range b {
		if owned == id {
			return true
		}
	}
	return false
}

// Scan implements sql.Scanner
func (b *BadgeIDs) Scan(value interface{}) error {
	*b = BadgeIDs{}
	if value == nil {
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into BadgeIDs", value)
	}
	return json.Unmarshal(raw, b)
}

// Value implements driver.Valuer
func (b BadgeIDs) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return jsonValue([]string(b))
}

// UserProgress is the single user document holding counters and owned badges
type UserProgress struct {
	UserID       string    `json:"user_id" db:"id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	PhotoURL     string    `json:"photo_url,omitempty" db:"photo_url"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	Stats        UserStats `json:"stats" db:"stats"`
	EarnedBadges BadgeIDs  `json:"earned_badges" db:"earned_badges"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy so transactional closures never share maps
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	out := *p
	out.Stats = p.Stats.Clone()
	out.EarnedBadges = append(BadgeIDs(nil), p.EarnedBadges...)
	return &out
}

// ===============================
// ITEM AGGREGATES
// ===============================

// ItemStats is the per catalog item aggregate shared by all users
type ItemStats struct {
	ItemID        string    `json:"item_id" db:"item_id"`
	LikeCount     int64     `json:"like_count" db:"like_count"`
	MovieID       *int64    `json:"movie_id,omitempty" db:"movie_id"`
	Title         string    `json:"title,omitempty" db:"title"`
	OriginalTitle string    `json:"original_title,omitempty" db:"original_title"`
	PosterPath    string    `json:"poster_path,omitempty" db:"poster_path"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ItemMetadata is the catalog pass-through merged into aggregates and memberships
type ItemMetadata struct {
	MovieID       *int64   `json:"movie_id,omitempty"`
	TVID          *int64   `json:"tv_id,omitempty"`
	Title         string   `json:"title,omitempty" validate:"omitempty,max=500"`
	Name          string   `json:"name,omitempty" validate:"omitempty,max=500"`
	OriginalTitle string   `json:"original_title,omitempty" validate:"omitempty,max=500"`
	PosterPath    string   `json:"poster_path,omitempty" validate:"omitempty,max=500"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
}

// CatalogID returns the movie id, falling back to the tv id
func (m ItemMetadata) CatalogID() *int64 {
	if m.MovieID != nil {
		return m.MovieID
	}
	return m.TVID
}

// DisplayTitle prefers the movie title over a series name
func (m ItemMetadata) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// MergeInto copies the non-empty metadata fields onto stats
func (m ItemMetadata) MergeInto(stats *ItemStats) {
	if id := m.CatalogID(); id != nil {
		stats.MovieID = id
	}
	if title := m.DisplayTitle(); title != "" {
		stats.Title = title
	}
	if m.OriginalTitle != "" {
		stats.OriginalTitle = m.OriginalTitle
	}
	if m.PosterPath != "" {
		stats.PosterPath = m.PosterPath
	}
}

// Scan implements sql.Scanner
func (m *ItemMetadata) Scan(value interface{}) error {
	*m = ItemMetadata{}
	if value == nil {
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into ItemMetadata", value)
	}
	return json.Unmarshal(raw, m)
}

// Value implements driver.Valuer
func (m ItemMetadata) Value() (driver.Value, error) {
	return jsonValue(m)
}

// ===============================
// MEMBERSHIPS
// ===============================

// Collection names a per-user membership collection
type Collection string

const (
	CollectionFavorites Collection = "favorites"
	CollectionWatchlist Collection = "watchlist"
)

// Valid reports whether c is a known collection
func (c Collection) Valid() bool {
	return c == CollectionFavorites || c == CollectionWatchlist
}

// AffectsAggregate reports whether membership changes move the item like count
func (c Collection) AffectsAggregate() bool {
	return c == CollectionFavorites
}

// Interaction is a per-user membership record for one item
type Interaction struct {
	UserID     string       `json:"user_id" db:"user_id"`
	Collection Collection   `json:"collection" db:"collection"`
	ItemID     string       `json:"item_id" db:"item_id"`
	Metadata   ItemMetadata `json:"metadata" db:"data"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

// ===============================
// COMMENTS
// ===============================

// CommentStatus is the moderation state of a comment
type CommentStatus int16

const (
	CommentStatusPending   CommentStatus = 0
	CommentStatusPublished CommentStatus = 1
	CommentStatusRejected  CommentStatus = 2
)

func (s CommentStatus) String() string {
	switch s {
	case CommentStatusPending:
		return "pending"
	case CommentStatusPublished:
		return "published"
	case CommentStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// CanTransitionTo allows only Pending -> Published and Pending -> Rejected
func (s CommentStatus) CanTransitionTo(next CommentStatus) bool {
	return s == CommentStatusPending && (next == CommentStatusPublished || next == CommentStatusRejected)
}

// MediaType distinguishes movies from series
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Comment represents a user comment on a catalog item
type Comment struct {
	ID            string        `json:"id" db:"id"`
	ItemID        string        `json:"item_id" db:"item_id"`
	MediaType     MediaType     `json:"media_type" db:"media_type"`
	UserID        string        `json:"user_id" db:"user_id"`
	UserName      string        `json:"user_name" db:"user_name"`
	UserAvatarURL string        `json:"user_avatar_url,omitempty" db:"user_avatar_url"`
	Content       string        `json:"content" db:"content"`
	Status        CommentStatus `json:"status" db:"status"`
	Spoiler       bool          `json:"spoiler" db:"spoiler"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`

	IsOwner bool `json:"is_owner" db:"-"`
}

// ===============================
// CUSTOM LISTS
// ===============================

// UserList is a user-created named list of catalog items
type UserList struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	ItemCount int64     `json:"item_count" db:"item_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserListItem is one catalog item inside a custom list
type UserListItem struct {
	ListID    string       `json:"list_id" db:"list_id"`
	ItemID    string       `json:"item_id" db:"item_id"`
	MediaType MediaType    `json:"media_type" db:"media_type"`
	Metadata  ItemMetadata `json:"metadata" db:"data"`
	AddedAt   time.Time    `json:"added_at" db:"added_at"`
}

// ===============================
// PAGINATION
// ===============================

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Limit  int `json:"limit" validate:"min=1,max=100"`
	Offset int `json:"offset" validate:"min=0"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

func jsonValue(v interface{}) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
