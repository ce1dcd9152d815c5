package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinehub/internal/badges"
	"cinehub/internal/config"
	"cinehub/internal/middleware"
	"cinehub/internal/models"
	"cinehub/internal/repositories"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "router-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "test", AllowedOrigin: "*"},
		Database: config.DatabaseConfig{
			MaxRetryAttempts: 50,
			RetryBackoff:     time.Millisecond,
			MaxRetryBackoff:  5 * time.Millisecond,
		},
		Store: config.StoreConfig{Provider: "memory"},
		Cache: config.CacheConfig{Provider: "memory", DefaultTTL: time.Minute, StatsTTL: time.Second, MaxEntries: 100},
		Auth:  config.AuthConfig{JWTSecret: testSecret, ModeratorRole: "moderator"},
		Gamification: config.GamificationConfig{
			CommentDenylist:  []string{"idiot"},
			DenylistLocale:   "en",
			CommentMaxLength: 500,
			AnonymousName:    "Anonymous",
		},
		Monitoring: config.MonitoringConfig{EnableMetrics: true, MetricsPath: "/metrics"},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := testConfig()
	logger := zap.NewNop()

	repos, err := repositories.NewCollection(cfg, nil, logger)
	require.NoError(t, err)

	catalog, err := badges.NewCatalog([]models.BadgeDefinition{
		{ID: "comment_bronze", Name: "Voice", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierBronze, Threshold: 1},
		{ID: "comment_silver", Name: "Critic", Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierSilver, Threshold: 2},
	})
	require.NoError(t, err)

	sc, err := services.NewServiceCollection(cfg, repos, logger, services.WithCatalog(catalog))
	require.NoError(t, err)
	require.NoError(t, sc.Start(context.Background()))
	t.Cleanup(func() { _ = sc.Shutdown(context.Background()) })

	builder := response.NewBuilder(response.DefaultConfig(), logger)
	authConfig := middleware.DefaultAuthConfig()
	authConfig.JWTSecret = testSecret
	auth := middleware.NewAuthMiddleware(authConfig, builder, logger)

	server := httptest.NewServer(SetupRouter(cfg, sc, auth, builder, logger))
	t.Cleanup(server.Close)
	return server
}

func token(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	signed, err := middleware.SignToken(testSecret, userID, roles, time.Hour)
	require.NoError(t, err)
	return signed
}

type envelope struct {
	Success bool                  `json:"success"`
	Data    json.RawMessage       `json:"data"`
	Message string                `json:"message"`
	Error   *response.ErrorDetail `json:"error"`
}

func call(t *testing.T, server *httptest.Server, method, path, bearer string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func TestCommentFlowAwardsBadge(t *testing.T) {
	server := newTestServer(t)
	alice := token(t, "alice")

	status, _ := call(t, server, http.MethodPost, "/api/v1/users/me", alice, map[string]string{"nickname": "Alice"})
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, server, http.MethodPost, "/api/v1/items/603/comments", alice, map[string]interface{}{
		"media_type": "movie",
		"content":    "Loved it",
		"genre_ids":  []int{28},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Congratulations! New level: Voice", env.Message)

	var result services.SubmitCommentResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "Alice", result.Comment.UserName)
	assert.Equal(t, models.CommentStatusPending, result.Comment.Status)

	status, env = call(t, server, http.MethodGet, "/api/v1/users/me/profile", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var profile services.ProfileResponse
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, int64(1), profile.Stats.Get(models.CounterTotalComments))
	require.Len(t, profile.Badges, 1)
	assert.Equal(t, "comment_bronze", profile.Badges[0].ID)
}

func TestRejectedCommentIsValidationError(t *testing.T) {
	server := newTestServer(t)

	status, env := call(t, server, http.MethodPost, "/api/v1/items/603/comments", token(t, "bob"), map[string]interface{}{
		"media_type": "movie",
		"content":    "what an idiot",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, services.ErrorTypeValidation, env.Error.Type)
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t)

	status, env := call(t, server, http.MethodPost, "/api/v1/items/603/interactions/favorites", "", map[string]bool{"adding": true})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)

	status, _ = call(t, server, http.MethodPost, "/api/v1/items/603/interactions/favorites", "not-a-token", map[string]bool{"adding": true})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestToggleLikeUpdatesStats(t *testing.T) {
	server := newTestServer(t)

	for _, user := range []string{"u1", "u2"} {
		status, env := call(t, server, http.MethodPost, "/api/v1/items/603/interactions/favorites", token(t, user), map[string]interface{}{
			"adding": true,
			"item":   map[string]interface{}{"title": "The Matrix"},
		})
		require.Equal(t, http.StatusOK, status)
		var result services.ToggleResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.True(t, result.Active)
	}

	status, env := call(t, server, http.MethodGet, "/api/v1/items/603/stats", "", nil)
	require.Equal(t, http.StatusOK, status)
	var stats models.ItemStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.LikeCount)

	status, env = call(t, server, http.MethodGet, "/api/v1/items/603/interactions/favorites", token(t, "u1"), nil)
	require.Equal(t, http.StatusOK, status)
	var itemStatus services.ItemStatus
	require.NoError(t, json.Unmarshal(env.Data, &itemStatus))
	assert.True(t, itemStatus.Active)
}

func TestModerationRequiresRole(t *testing.T) {
	server := newTestServer(t)
	author := token(t, "author")

	status, env := call(t, server, http.MethodPost, "/api/v1/items/603/comments", author, map[string]string{
		"media_type": "movie",
		"content":    "Great",
	})
	require.Equal(t, http.StatusCreated, status)
	var result services.SubmitCommentResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	path := "/api/v1/comments/" + result.Comment.ID + "/moderation"

	status, _ = call(t, server, http.MethodPost, path, author, map[string]string{"decision": "publish"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, server, http.MethodPost, path, token(t, "mod", "moderator"), map[string]string{"decision": "publish"})
	require.Equal(t, http.StatusOK, status)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(env.Data, &comment))
	assert.Equal(t, models.CommentStatusPublished, comment.Status)

	status, env = call(t, server, http.MethodGet, "/api/v1/items/603/comments", "", nil)
	require.Equal(t, http.StatusOK, status)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(env.Data, &comments))
	assert.Len(t, comments, 1)
}

func TestListsEndpoints(t *testing.T) {
	server := newTestServer(t)
	carol := token(t, "carol")

	status, env := call(t, server, http.MethodPost, "/api/v1/users/me/lists", carol, map[string]string{"name": "Weekend"})
	require.Equal(t, http.StatusCreated, status)
	var list models.UserList
	require.NoError(t, json.Unmarshal(env.Data, &list))

	item := map[string]string{"item_id": "603", "media_type": "movie"}
	status, _ = call(t, server, http.MethodPost, "/api/v1/users/me/lists/"+list.ID+"/items", carol, item)
	assert.Equal(t, http.StatusCreated, status)
	status, _ = call(t, server, http.MethodPost, "/api/v1/users/me/lists/"+list.ID+"/items", carol, item)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, server, http.MethodGet, "/api/v1/users/me/lists/"+list.ID, token(t, "dave"), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPublicBadgesAndHealth(t *testing.T) {
	server := newTestServer(t)

	status, env := call(t, server, http.MethodGet, "/api/v1/badges", "", nil)
	require.Equal(t, http.StatusOK, status)
	var board services.BadgeBoard
	require.NoError(t, json.Unmarshal(env.Data, &board))
	assert.Equal(t, 2, board.TotalCount)
	assert.Zero(t, board.OwnedCount)

	status, env = call(t, server, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, env = call(t, server, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
}
