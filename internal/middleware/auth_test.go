package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinehub/internal/contextutils"
	"cinehub/internal/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "middleware-test-secret"

func newTestAuth() *AuthMiddleware {
	config := DefaultAuthConfig()
	config.JWTSecret = secret
	return NewAuthMiddleware(config, response.NewBuilder(nil, zap.NewNop()), zap.NewNop())
}

// echoIdentity writes the caller id, or "anonymous"
func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := contextutils.GetIdentity(r.Context())
		if id == nil {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		if id.Moderator {
			_, _ = w.Write([]byte("mod:" + id.UserID))
			return
		}
		_, _ = w.Write([]byte(id.UserID))
	})
}

func serve(h http.Handler, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	auth := newTestAuth()
	handler := auth.RequireAuth()(echoIdentity())

	valid, err := SignToken(secret, "user-1", nil, time.Hour)
	require.NoError(t, err)
	expired, err := SignToken(secret, "user-1", nil, -time.Hour)
	require.NoError(t, err)
	forged, err := SignToken("other-secret", "user-1", nil, time.Hour)
	require.NoError(t, err)

	rec := serve(handler, valid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	for name, bearer := range map[string]string{"missing": "", "expired": expired, "forged": forged, "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, serve(handler, bearer).Code)
		})
	}
}

func TestRequireAuthRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(newTestAuth().RequireAuth()(echoIdentity()), signed).Code)
}

func TestOptionalAuth(t *testing.T) {
	handler := newTestAuth().OptionalAuth()(echoIdentity())

	rec := serve(handler, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(handler, "abc").Code)
}

func TestRequireModerator(t *testing.T) {
	auth := newTestAuth()
	handler := auth.RequireAuth()(auth.RequireModerator()(echoIdentity()))

	user, err := SignToken(secret, "user-1", []string{"viewer"}, time.Hour)
	require.NoError(t, err)
	mod, err := SignToken(secret, "mod-1", []string{"moderator"}, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(handler, user).Code)

	rec := serve(handler, mod)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mod:mod-1", rec.Body.String())
}

func TestRecoveryWritesRetryMessage(t *testing.T) {
	builder := response.NewBuilder(nil, zap.NewNop())
	handler := Recovery(builder)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(handler, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "please try again")
	assert.NotContains(t, rec.Body.String(), "boom")
}
