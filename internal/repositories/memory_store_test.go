package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinehub/internal/database"
	"cinehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore(database.RetryPolicy{
		MaxAttempts:     50,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}, zap.NewNop())
}

func seedUsers(t *testing.T, store *MemoryStore, userIDs ...string) {
	t.Helper()
	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx Tx) error {
		for _, id := range userIDs {
			if err := tx.SaveUserProgress(ctx, &models.UserProgress{UserID: id, Stats: models.UserStats{}}); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestMemoryStoreReadsOwnWrites(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	err := store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.GetItemStats(ctx, "550")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, tx.SaveItemStats(ctx, &models.ItemStats{ItemID: "550", LikeCount: 1}))
		stats, err := tx.GetItemStats(ctx, "550")
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.LikeCount)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreRollsBackOnError(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.SaveItemStats(ctx, &models.ItemStats{ItemID: "550", LikeCount: 1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.GetItemStats(ctx, "550")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreConcurrentIncrementsAreSerialized(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	const writers = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
				stats, err := tx.GetItemStats(ctx, "550")
				if errors.Is(err, ErrNotFound) {
					stats = &models.ItemStats{ItemID: "550"}
				} else if err != nil {
					return err
				}
				stats.LikeCount++
				return tx.SaveItemStats(ctx, stats)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err := store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		stats, err := tx.GetItemStats(ctx, "550")
		require.NoError(t, err)
		assert.Equal(t, int64(writers), stats.LikeCount)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreDeleteInteraction(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	seedUsers(t, store, "u1")

	in := &models.Interaction{UserID: "u1", Collection: models.CollectionFavorites, ItemID: "550", CreatedAt: time.Now()}
	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.PutInteraction(ctx, in)
	}))

	listed, err := store.ListInteractions(ctx, "u1", models.CollectionFavorites, models.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteInteraction(ctx, "u1", models.CollectionFavorites, "550")
	}))

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.GetInteraction(ctx, "u1", models.CollectionFavorites, "550")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))

	listed, err = store.ListInteractions(ctx, "u1", models.CollectionFavorites, models.PaginationParams{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestMemoryStoreUserProgressIsCopied(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	progress := &models.UserProgress{UserID: "u1", Stats: models.UserStats{"total_comments": 1}}
	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.SaveUserProgress(ctx, progress)
	}))
	progress.Stats["total_comments"] = 99

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		got, err := tx.GetUserProgress(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Stats.Get("total_comments"))
		return nil
	}))
}

func TestMemoryStoreListCommentsVisibility(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedUsers(t, store, "u1", "u2")

	comments := []*models.Comment{
		{ID: "c1", ItemID: "550", MediaType: models.MediaTypeMovie, UserID: "u1", Status: models.CommentStatusPublished, CreatedAt: base},
		{ID: "c2", ItemID: "550", MediaType: models.MediaTypeMovie, UserID: "u2", Status: models.CommentStatusPending, CreatedAt: base.Add(time.Minute)},
		{ID: "c3", ItemID: "550", MediaType: models.MediaTypeMovie, UserID: "u1", Status: models.CommentStatusPending, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "c4", ItemID: "550", MediaType: models.MediaTypeMovie, UserID: "u1", Status: models.CommentStatusRejected, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "c5", ItemID: "680", MediaType: models.MediaTypeMovie, UserID: "u1", Status: models.CommentStatusPublished, CreatedAt: base},
	}
	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		for _, c := range comments {
			if err := tx.CreateComment(ctx, c); err != nil {
				return err
			}
		}
		return nil
	}))

	anonymous, err := store.ListComments(ctx, CommentFilter{ItemID: "550"})
	require.NoError(t, err)
	require.Len(t, anonymous, 1)
	assert.Equal(t, "c1", anonymous[0].ID)

	owner, err := store.ListComments(ctx, CommentFilter{ItemID: "550", ViewerID: "u1"})
	require.NoError(t, err)
	require.Len(t, owner, 2)
	assert.Equal(t, "c3", owner[0].ID, "newest first")
	assert.Equal(t, "c1", owner[1].ID)
}

func TestMemoryStoreUpdateMissingComment(t *testing.T) {
	store := newTestStore()
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.UpdateCommentStatus(ctx, "missing", models.CommentStatusPublished)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, paginate(items, 0, 2))
	assert.Equal(t, []int{5}, paginate(items, 4, 2))
	assert.Empty(t, paginate(items, 9, 2))
}

func TestMemoryStoreRejectsWritesForUnknownUser(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	now := time.Now()

	writes := map[string]TxFunc{
		"comment": func(ctx context.Context, tx Tx) error {
			return tx.CreateComment(ctx, &models.Comment{ID: "c1", ItemID: "550", UserID: "ghost", Status: models.CommentStatusPending, CreatedAt: now})
		},
		"list": func(ctx context.Context, tx Tx) error {
			return tx.SaveList(ctx, &models.UserList{ID: "l1", UserID: "ghost", Name: "Weekend", CreatedAt: now})
		},
		"interaction": func(ctx context.Context, tx Tx) error {
			return tx.PutInteraction(ctx, &models.Interaction{UserID: "ghost", Collection: models.CollectionFavorites, ItemID: "550", CreatedAt: now})
		},
	}
	for name, write := range writes {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.RunInTx(ctx, write), ErrUnknownUser)
		})
	}

	// the user row written earlier in the same transaction satisfies the reference
	err := store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.SaveUserProgress(ctx, &models.UserProgress{UserID: "ghost", Stats: models.UserStats{}}); err != nil {
			return err
		}
		return writes["comment"](ctx, tx)
	})
	require.NoError(t, err)

	owned, err := store.ListComments(ctx, CommentFilter{ItemID: "550", ViewerID: "ghost"})
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}
