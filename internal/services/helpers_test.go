package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinehub/internal/badges"
	"cinehub/internal/database"
	"cinehub/internal/models"
	"cinehub/internal/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: testNow} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func genreID(id int) *int { return &id }

// walkthroughCatalog holds one comment badge and one genre badge
func walkthroughCatalog(t *testing.T) *badges.Catalog {
	t.Helper()
	catalog, err := badges.NewCatalog([]models.BadgeDefinition{
		{ID: "comment_bronze", Name: "Voice", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierBronze, Threshold: 1},
		{ID: "action_bronze", Name: "Quick", Category: models.BadgeCategoryGenre, Tier: models.BadgeTierBronze, Threshold: 5, RelatedGenreID: genreID(28)},
	})
	require.NoError(t, err)
	return catalog
}

// ladderCatalog holds a full comment ladder and a weekly loyalty badge
func ladderCatalog(t *testing.T) *badges.Catalog {
	t.Helper()
	catalog, err := badges.NewCatalog([]models.BadgeDefinition{
		{ID: "loyalty_week", Name: "Regular", Category: models.BadgeCategoryLoyalty, Tier: models.BadgeTierSpecial, Threshold: 7},
		{ID: "comment_bronze", Name: "Voice", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierBronze, Threshold: 1},
		{ID: "comment_silver", Name: "Critic", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierSilver, Threshold: 2},
		{ID: "comment_gold", Name: "Legend", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierGold, Threshold: 3},
	})
	require.NoError(t, err)
	return catalog
}

func newTestMemoryStore() *repositories.MemoryStore {
	return repositories.NewMemoryStore(database.RetryPolicy{
		MaxAttempts:     200,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}, zap.NewNop())
}

func newTestDeps(t *testing.T, catalog *badges.Catalog, clock *testClock) *Dependencies {
	t.Helper()
	return &Dependencies{
		Store:   newTestMemoryStore(),
		Catalog: catalog,
		Logger:  zap.NewNop(),
		Clock:   clock.Now,
	}
}

// failingStore fails every transaction like an unreachable database
type failingStore struct {
	repositories.Store
	err   error
	calls int
}

func (s *failingStore) RunInTx(ctx context.Context, fn repositories.TxFunc) error {
	s.calls++
	return s.err
}

func (s *failingStore) Provider() string { return "failing" }

func newFailingDeps() (*Dependencies, *failingStore) {
	store := &failingStore{err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")}
	return &Dependencies{Store: store, Logger: zap.NewNop()}, store
}

// flakyStore fails the first failures transactions, then delegates
type flakyStore struct {
	repositories.Store
	failures int
}

func (s *flakyStore) RunInTx(ctx context.Context, fn repositories.TxFunc) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("read tcp 127.0.0.1:5432: connection reset by peer")
	}
	return s.Store.RunInTx(ctx, fn)
}

func progressOf(t *testing.T, store repositories.Store, userID string) *models.UserProgress {
	t.Helper()
	var progress *models.UserProgress
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx repositories.Tx) error {
		p, err := tx.GetUserProgress(ctx, userID)
		progress = p
		return err
	})
	require.NoError(t, err)
	return progress
}
