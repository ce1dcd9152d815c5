package services

import (
	"context"
	"fmt"
	"testing"

	"cinehub/internal/cache"
	"cinehub/internal/models"

	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func favorite(userID string, adding bool) *ToggleInteractionRequest {
	return &ToggleInteractionRequest{
		UserID:     userID,
		ItemID:     "603",
		Collection: models.CollectionFavorites,
		IsAdding:   adding,
		Metadata:   models.ItemMetadata{Title: "The Matrix"},
	}
}

func TestToggleInteractionIsIdempotent(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)
	ctx := context.Background()

	first, err := svc.ToggleInteraction(ctx, favorite("u1", true))
	require.NoError(t, err)
	assert.Equal(t, &ToggleResult{Active: true, Changed: true, LikeCount: 1}, first)

	again, err := svc.ToggleInteraction(ctx, favorite("u1", true))
	require.NoError(t, err)
	assert.Equal(t, &ToggleResult{Active: true, Changed: false, LikeCount: 1}, again)

	removed, err := svc.ToggleInteraction(ctx, favorite("u1", false))
	require.NoError(t, err)
	assert.Equal(t, &ToggleResult{Active: false, Changed: true, LikeCount: 0}, removed)

	stats, err := svc.GetItemStats(ctx, "603")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.LikeCount)
	assert.Equal(t, "The Matrix", stats.Title)
}

func TestToggleInteractionClampsAtZero(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)
	ctx := context.Background()

	result, err := svc.ToggleInteraction(ctx, favorite("u1", false))
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, int64(0), result.LikeCount)

	stats, err := svc.GetItemStats(ctx, "603")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.LikeCount)
}

func TestToggleWatchlistLeavesLikeCount(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)
	ctx := context.Background()

	req := favorite("u1", true)
	req.Collection = models.CollectionWatchlist
	result, err := svc.ToggleInteraction(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, int64(0), result.LikeCount)

	status, err := svc.CheckItemStatus(ctx, "u1", models.CollectionWatchlist, "603")
	require.NoError(t, err)
	assert.True(t, status.Active)

	status, err = svc.CheckItemStatus(ctx, "u1", models.CollectionFavorites, "603")
	require.NoError(t, err)
	assert.False(t, status.Active)

	items, err := svc.ListInteractions(ctx, "u1", models.CollectionWatchlist, models.PaginationParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "603", items[0].ItemID)
}

func TestConcurrentLikesAreAllCounted(t *testing.T) {
	const users = 20

	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)
	ctx := context.Background()

	p := pool.New().WithErrors().WithMaxGoroutines(users)
	for i := 0; i < users; i++ {
		userID := fmt.Sprintf("user-%d", i)
		p.Go(func() error {
			_, err := svc.ToggleInteraction(ctx, favorite(userID, true))
			return err
		})
	}
	require.NoError(t, p.Wait())

	stats, err := svc.GetItemStats(ctx, "603")
	require.NoError(t, err)
	assert.Equal(t, int64(users), stats.LikeCount)
}

func TestToggleInteractionRequiresAuthentication(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)

	_, err := svc.ToggleInteraction(context.Background(), favorite("", true))
	require.Error(t, err)
	assert.True(t, IsUnauthorizedError(err))

	_, err = svc.LikeItem(context.Background(), &LikeItemRequest{ToggleInteractionRequest: *favorite("", true)})
	assert.True(t, IsUnauthorizedError(err))
}

func TestToggleInteractionRejectsUnknownCollection(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)

	req := favorite("u1", true)
	req.Collection = "seen"
	_, err := svc.ToggleInteraction(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestToggleInteractionHidesStorageFailures(t *testing.T) {
	deps, _ := newFailingDeps()
	svc := NewInteractionService(deps, nil)

	_, err := svc.ToggleInteraction(context.Background(), favorite("u1", true))
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.Equal(t, MessageTryAgain, GetServiceError(err).Message)
}

func TestLikeItemMovesGenreCounters(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)
	ctx := context.Background()

	like := &LikeItemRequest{ToggleInteractionRequest: *favorite("u1", true), GenreIDs: []int{28, 878, 28}}
	_, err := svc.LikeItem(ctx, like)
	require.NoError(t, err)

	progress := progressOf(t, deps.Store, "u1")
	assert.Equal(t, int64(1), progress.Stats.Get("genre_28"))
	assert.Equal(t, int64(1), progress.Stats.Get("genre_878"))

	// repeating the like changes nothing
	_, err = svc.LikeItem(ctx, like)
	require.NoError(t, err)
	assert.Equal(t, int64(1), progressOf(t, deps.Store, "u1").Stats.Get("genre_28"))

	unlike := &LikeItemRequest{ToggleInteractionRequest: *favorite("u1", false), GenreIDs: []int{28, 878}}
	_, err = svc.LikeItem(ctx, unlike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), progressOf(t, deps.Store, "u1").Stats.Get("genre_28"))
}

func TestAdjustGenreStatsClampsAndKeepsBadges(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	interactions := NewInteractionService(deps, nil)
	comments := NewCommentService(deps, nil, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := comments.SubmitComment(ctx, submitRequest("u1", "action!", 28))
		require.NoError(t, err)
	}
	require.Contains(t, progressOf(t, deps.Store, "u1").EarnedBadges, "action_bronze")

	for i := 0; i < 7; i++ {
		err := interactions.AdjustGenreStats(ctx, &AdjustGenreStatsRequest{UserID: "u1", GenreIDs: []int{28}, IsAdding: false})
		require.NoError(t, err)
	}

	progress := progressOf(t, deps.Store, "u1")
	assert.Equal(t, int64(0), progress.Stats.Get("genre_28"))
	assert.Equal(t, models.BadgeIDs{"comment_bronze", "action_bronze"}, progress.EarnedBadges)
}

func TestAdjustGenreStatsRequiresGenres(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	svc := NewInteractionService(deps, nil)

	err := svc.AdjustGenreStats(context.Background(), &AdjustGenreStatsRequest{UserID: "u1", IsAdding: true})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestGetItemStatsCacheRefreshedOnToggle(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	deps.Cache = cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
	defer deps.Cache.Close()

	svc := NewInteractionService(deps, nil)
	ctx := context.Background()

	stats, err := svc.GetItemStats(ctx, "603")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.LikeCount)

	_, err = svc.ToggleInteraction(ctx, favorite("u1", true))
	require.NoError(t, err)

	stats, err = svc.GetItemStats(ctx, "603")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.LikeCount)
}

func TestGetItemStatsLateReadDoesNotOverwriteToggle(t *testing.T) {
	deps := newTestDeps(t, walkthroughCatalog(t), newTestClock())
	deps.Cache = cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
	defer deps.Cache.Close()

	svc := NewInteractionService(deps, nil)
	ctx := context.Background()

	_, err := svc.ToggleInteraction(ctx, favorite("u1", true))
	require.NoError(t, err)

	var cached models.ItemStats
	require.True(t, cache.GetJSON(ctx, deps.Cache, itemStatsCacheKey("603"), &cached))
	assert.Equal(t, int64(1), cached.LikeCount)

	// a reader that loaded the row before the toggle committed
	stored, err := cache.SetJSONIfAbsent(ctx, deps.Cache, itemStatsCacheKey("603"), &models.ItemStats{ItemID: "603"}, 0)
	require.NoError(t, err)
	assert.False(t, stored)

	stats, err := svc.GetItemStats(ctx, "603")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.LikeCount)
}
