package repositories

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"cinehub/internal/config"
	"cinehub/internal/database"
	"cinehub/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newPostgresTestStore connects to TEST_DATABASE_URL and migrates it. Tests
// use fresh ids so they can share one database.
func newPostgresTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.DatabaseConfig{
		URL:              url,
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Minute,
		MaxRetryAttempts: 50,
		RetryBackoff:     time.Millisecond,
		MaxRetryBackoff:  20 * time.Millisecond,
	}
	db, err := database.NewManager(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate("../../migrations"))
	return NewPostgresStore(db, NewBaseRepository(zap.NewNop(), 0))
}

func freshID(t *testing.T, prefix string) string {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return prefix + "-" + id.String()
}

func TestPostgresStoreFirstCommentNeedsUserRow(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	userID := freshID(t, "user")
	itemID := freshID(t, "item")
	now := time.Now().UTC()

	commentID, err := uuid.NewV4()
	require.NoError(t, err)
	comment := &models.Comment{
		ID:        commentID.String(),
		ItemID:    itemID,
		MediaType: models.MediaTypeMovie,
		UserID:    userID,
		UserName:  "Deniz",
		Content:   "First words",
		Status:    models.CommentStatusPending,
		CreatedAt: now,
	}

	err = store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateComment(ctx, comment)
	})
	assert.ErrorIs(t, err, ErrUnknownUser)

	err = store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		progress := &models.UserProgress{
			UserID:       userID,
			Nickname:     "Deniz",
			RegisteredAt: now,
			Stats:        models.UserStats{},
			EarnedBadges: models.BadgeIDs{},
			UpdatedAt:    now,
		}
		if err := tx.SaveUserProgress(ctx, progress); err != nil {
			return err
		}
		if err := tx.CreateComment(ctx, comment); err != nil {
			return err
		}
		progress.Stats.Add(models.CounterTotalComments, 1)
		progress.EarnedBadges = models.BadgeIDs{"comment_bronze"}
		return tx.SaveUserProgress(ctx, progress)
	})
	require.NoError(t, err)

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		progress, err := tx.GetUserProgress(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), progress.Stats.Get(models.CounterTotalComments))
		assert.Equal(t, models.BadgeIDs{"comment_bronze"}, progress.EarnedBadges)
		return nil
	}))

	anonymous, err := store.ListComments(ctx, CommentFilter{ItemID: itemID})
	require.NoError(t, err)
	assert.Empty(t, anonymous)

	own, err := store.ListComments(ctx, CommentFilter{ItemID: itemID, ViewerID: userID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, comment.ID, own[0].ID)
}

func TestPostgresStoreRejectsWritesForUnknownUser(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	ghost := freshID(t, "ghost")
	now := time.Now().UTC()

	listID, err := uuid.NewV4()
	require.NoError(t, err)

	err = store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.PutInteraction(ctx, &models.Interaction{UserID: ghost, Collection: models.CollectionFavorites, ItemID: "550", CreatedAt: now})
	})
	assert.ErrorIs(t, err, ErrUnknownUser)

	err = store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.SaveList(ctx, &models.UserList{ID: listID.String(), UserID: ghost, Name: "Weekend", CreatedAt: now})
	})
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestPostgresStoreConcurrentIncrementsAreSerialized(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	itemID := freshID(t, "item")
	const writers = 10

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
				stats, err := tx.GetItemStats(ctx, itemID)
				if errors.Is(err, ErrNotFound) {
					stats = &models.ItemStats{ItemID: itemID}
				} else if err != nil {
					return err
				}
				stats.LikeCount++
				stats.UpdatedAt = time.Now().UTC()
				return tx.SaveItemStats(ctx, stats)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		stats, err := tx.GetItemStats(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, int64(writers), stats.LikeCount)
		return nil
	}))
}

func TestPostgresStoreDeleteInteraction(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()
	userID := freshID(t, "user")
	now := time.Now().UTC()

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.SaveUserProgress(ctx, &models.UserProgress{UserID: userID, RegisteredAt: now, Stats: models.UserStats{}, EarnedBadges: models.BadgeIDs{}, UpdatedAt: now}); err != nil {
			return err
		}
		return tx.PutInteraction(ctx, &models.Interaction{
			UserID:     userID,
			Collection: models.CollectionWatchlist,
			ItemID:     "550",
			Metadata:   models.ItemMetadata{Title: "Fight Club"},
			CreatedAt:  now,
		})
	}))

	listed, err := store.ListInteractions(ctx, userID, models.CollectionWatchlist, models.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Fight Club", listed[0].Metadata.Title)

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteInteraction(ctx, userID, models.CollectionWatchlist, "550")
	}))

	listed, err = store.ListInteractions(ctx, userID, models.CollectionWatchlist, models.PaginationParams{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}
