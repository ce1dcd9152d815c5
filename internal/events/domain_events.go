package events

// Event types published by the services
const (
	TypeBadgesAwarded      = "badge.awarded"
	TypeCommentSubmitted   = "comment.submitted"
	TypeCommentModerated   = "comment.moderated"
	TypeInteractionToggled = "interaction.toggled"
	TypeUserRegistered     = "user.registered"
)

// AwardedBadge names one badge in a BadgesAwardedEvent
type AwardedBadge struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// BadgesAwardedEvent is emitted after a transaction grants new badges
type BadgesAwardedEvent struct {
	BaseEvent
	Badges []AwardedBadge `json:"badges"`
	// Retracted lists lower tiers removed by the same award
	Retracted []string `json:"retracted,omitempty"`
}

// NewBadgesAwardedEvent creates a badge award event
func NewBadgesAwardedEvent(userID string, badges []AwardedBadge, retracted []string) *BadgesAwardedEvent {
	return &BadgesAwardedEvent{
		BaseEvent: newBase(TypeBadgesAwarded, userID),
		Badges:    badges,
		Retracted: retracted,
	}
}

// CommentSubmittedEvent is emitted once a pending comment is stored
type CommentSubmittedEvent struct {
	BaseEvent
	CommentID string `json:"comment_id"`
	ItemID    string `json:"item_id"`
	MediaType string `json:"media_type"`
	GenreIDs  []int  `json:"genre_ids,omitempty"`
}

// NewCommentSubmittedEvent creates a comment submission event
func NewCommentSubmittedEvent(userID, commentID, itemID, mediaType string, genreIDs []int) *CommentSubmittedEvent {
	return &CommentSubmittedEvent{
		BaseEvent: newBase(TypeCommentSubmitted, userID),
		CommentID: commentID,
		ItemID:    itemID,
		MediaType: mediaType,
		GenreIDs:  genreIDs,
	}
}

// CommentModeratedEvent is emitted when a moderator publishes or rejects a comment
type CommentModeratedEvent struct {
	BaseEvent
	CommentID string `json:"comment_id"`
	ItemID    string `json:"item_id"`
	Status    string `json:"status"`
}

// NewCommentModeratedEvent creates a moderation event; userID is the moderator
func NewCommentModeratedEvent(moderatorID, commentID, itemID, status string) *CommentModeratedEvent {
	return &CommentModeratedEvent{
		BaseEvent: newBase(TypeCommentModerated, moderatorID),
		CommentID: commentID,
		ItemID:    itemID,
		Status:    status,
	}
}

// InteractionToggledEvent is emitted when a membership actually changed
type InteractionToggledEvent struct {
	BaseEvent
	ItemID     string `json:"item_id"`
	Collection string `json:"collection"`
	Active     bool   `json:"active"`
	LikeCount  int64  `json:"like_count"`
}

// NewInteractionToggledEvent creates an interaction event
func NewInteractionToggledEvent(userID, itemID, collection string, active bool, likeCount int64) *InteractionToggledEvent {
	return &InteractionToggledEvent{
		BaseEvent:  newBase(TypeInteractionToggled, userID),
		ItemID:     itemID,
		Collection: collection,
		Active:     active,
		LikeCount:  likeCount,
	}
}

// UserRegisteredEvent is emitted the first time a user document is created
type UserRegisteredEvent struct {
	BaseEvent
	Nickname string `json:"nickname"`
}

// NewUserRegisteredEvent creates a registration event
func NewUserRegisteredEvent(userID, nickname string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: newBase(TypeUserRegistered, userID),
		Nickname:  nickname,
	}
}
