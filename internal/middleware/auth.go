// file: internal/middleware/auth.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cinehub/internal/contextutils"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	// HS256 shared secret. Empty disables authentication entirely.
	JWTSecret     string
	JWTIssuer     string
	ModeratorRole string
	Leeway        time.Duration

	LogFailedAuth bool
}

// DefaultAuthConfig returns authentication defaults
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		ModeratorRole: "moderator",
		Leeway:        30 * time.Second,
		LogFailedAuth: true,
	}
}

// Claims are the token claims the API reads. The identity provider sets
// sub to the user id.
type Claims struct {
	Name    string   `json:"name,omitempty"`
	Picture string   `json:"picture,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token carries role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	errNoToken      = errors.New("no bearer token")
	errInvalidToken = errors.New("invalid bearer token")
)

// AuthMiddleware verifies bearer tokens and puts the caller in the context
type AuthMiddleware struct {
	config  *AuthConfig
	parser  *jwt.Parser
	builder *response.Builder
	logger  *zap.Logger
}

// NewAuthMiddleware creates authentication middleware
func NewAuthMiddleware(config *AuthConfig, builder *response.Builder, logger *zap.Logger) *AuthMiddleware {
	if config == nil {
		config = DefaultAuthConfig()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(config.Leeway),
		jwt.WithExpirationRequired(),
	}
	if config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(config.JWTIssuer))
	}

	return &AuthMiddleware{
		config:  config,
		parser:  jwt.NewParser(opts...),
		builder: builder,
		logger:  logger,
	}
}

// ===============================
// MIDDLEWARE
// ===============================

// RequireAuth rejects requests without a valid token
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return am.authenticate(true)
}

// OptionalAuth attaches the caller when a valid token is present. An invalid
// token is still rejected so clients notice expiry.
func (am *AuthMiddleware) OptionalAuth() func(http.Handler) http.Handler {
	return am.authenticate(false)
}

// RequireModerator rejects callers without the moderator role. It must run
// after RequireAuth.
func (am *AuthMiddleware) RequireModerator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := contextutils.GetIdentity(r.Context())
			if identity == nil {
				am.builder.WriteError(w, r, services.ErrAuthenticationRequired())
				return
			}
			if !identity.Moderator {
				am.builder.WriteError(w, r, services.NewForbiddenError("Moderator role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (am *AuthMiddleware) authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := am.identify(r)
			switch {
			case err == nil:
				ctx := contextutils.WithIdentity(r.Context(), identity)
				next.ServeHTTP(w, r.WithContext(ctx))
			case errors.Is(err, errNoToken) && !required:
				next.ServeHTTP(w, r)
			default:
				if am.config.LogFailedAuth && !errors.Is(err, errNoToken) {
					GetRequestLogger(r.Context()).Warn("Authentication failed", zap.Error(err))
				}
				am.builder.WriteError(w, r, services.ErrAuthenticationRequired())
			}
		})
	}
}

// identify parses the Authorization header into an identity
func (am *AuthMiddleware) identify(r *http.Request) (*contextutils.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errNoToken
	}

	scheme, tokenString, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
		return nil, fmt.Errorf("%w: malformed authorization header", errInvalidToken)
	}
	if am.config.JWTSecret == "" {
		return nil, fmt.Errorf("%w: no secret configured", errInvalidToken)
	}

	claims := &Claims{}
	_, err := am.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(am.config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", errInvalidToken)
	}

	return &contextutils.Identity{
		UserID:    subject,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
		Moderator: am.config.ModeratorRole != "" && claims.HasRole(am.config.ModeratorRole),
	}, nil
}

// SignToken issues an HS256 token for userID. Used by tests and local tooling.
func SignToken(secret, userID string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
