package services

import (
	"context"
	"testing"
	"time"

	"cinehub/internal/badges"
	"cinehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserIsIdempotent(t *testing.T) {
	clock := newTestClock()
	deps := newTestDeps(t, ladderCatalog(t), clock)
	svc := NewProfileService(deps)
	ctx := context.Background()

	profile, err := svc.RegisterUser(ctx, &RegisterUserRequest{UserID: "u1", Nickname: "Deniz"})
	require.NoError(t, err)
	assert.Equal(t, "Deniz", profile.Nickname)
	assert.Equal(t, testNow, profile.RegisteredAt)

	clock.Advance(time.Hour)
	again, err := svc.RegisterUser(ctx, &RegisterUserRequest{UserID: "u1", Nickname: "Someone Else", PhotoURL: "https://img.example.com/u1.png"})
	require.NoError(t, err)
	assert.Equal(t, "Deniz", again.Nickname)
	assert.Equal(t, "https://img.example.com/u1.png", again.PhotoURL)
	assert.Equal(t, testNow, again.RegisteredAt)
}

func TestGetProfileGrantsLoyaltyWhenDue(t *testing.T) {
	clock := newTestClock()
	deps := newTestDeps(t, ladderCatalog(t), clock)
	svc := NewProfileService(deps)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, &RegisterUserRequest{UserID: "u1"})
	require.NoError(t, err)

	clock.Advance(6 * 24 * time.Hour)
	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 6, profile.MembershipDays)
	assert.Empty(t, profile.NewBadges)
	assert.Empty(t, profile.Badges)

	clock.Advance(24 * time.Hour)
	profile, err = svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"loyalty_week"}, badgeIDs(profile.NewBadges))
	assert.Equal(t, []string{"loyalty_week"}, badgeIDs(profile.Badges))

	earned, err := svc.RefreshLoyalty(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, earned)
}

func TestGetProfileUnknownUser(t *testing.T) {
	deps := newTestDeps(t, ladderCatalog(t), newTestClock())
	svc := NewProfileService(deps)

	_, err := svc.GetProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))

	_, err = svc.GetProfile(context.Background(), "")
	assert.True(t, IsUnauthorizedError(err))
}

func TestGetBadgeBoard(t *testing.T) {
	deps := newTestDeps(t, ladderCatalog(t), newTestClock())
	profiles := NewProfileService(deps)
	comments := NewCommentService(deps, nil, nil)
	ctx := context.Background()

	_, err := comments.SubmitComment(ctx, submitRequest("u1", "first"))
	require.NoError(t, err)

	board, err := profiles.GetBadgeBoard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, board.OwnedCount)
	assert.Equal(t, 4, board.TotalCount)

	require.Len(t, board.Rows, 6)
	assert.Equal(t, badges.RowHeader, board.Rows[0].Kind)
	assert.Equal(t, "Loyalty Badges", board.Rows[0].Header)
	assert.Equal(t, "Interaction Badges", board.Rows[2].Header)
	assert.Equal(t, "comment_bronze", board.Rows[3].Badge.ID)
	assert.True(t, board.Rows[3].Owned)
	assert.False(t, board.Rows[4].Owned)

	// users without a document see an all-unowned board
	empty, err := profiles.GetBadgeBoard(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, empty.OwnedCount)
}

func TestListBadgesFollowsCatalogOrder(t *testing.T) {
	deps := newTestDeps(t, ladderCatalog(t), newTestClock())
	svc := NewProfileService(deps)

	defs := svc.ListBadges(context.Background())
	assert.Equal(t, []string{"loyalty_week", "comment_bronze", "comment_silver", "comment_gold"}, badgeIDs(defs))
	assert.Equal(t, models.BadgeCategoryLoyalty, defs[0].Category)
}
