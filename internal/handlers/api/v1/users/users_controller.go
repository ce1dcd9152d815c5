// ===============================
// FILE: internal/handlers/api/v1/users/users_controller.go
// ===============================

package users

import (
	"fmt"
	"net/http"

	"cinehub/internal/badges"
	"cinehub/internal/contextutils"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"go.uber.org/zap"
)

// UserController handles profile and badge endpoints
type UserController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewUserController creates a new user controller
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ===============================
// PROFILE ENDPOINTS
// ===============================

// Register handles POST /api/v1/users/me. Token claims fill fields the body leaves empty.
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterUserRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if identity := contextutils.GetIdentity(r.Context()); identity != nil {
		req.UserID = identity.UserID
		if req.Nickname == "" {
			req.Nickname = identity.Name
		}
		if req.PhotoURL == "" {
			req.PhotoURL = identity.AvatarURL
		}
	}

	profile, err := c.serviceCollection.ProfileService.RegisterUser(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, profile)
}

// GetProfile handles GET /api/v1/users/me/profile
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := c.serviceCollection.ProfileService.GetProfile(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if n := len(profile.NewBadges); n > 0 {
		c.responseBuilder.WriteMessage(w, r, http.StatusOK, profile, fmt.Sprintf("%d new badge(s) earned", n))
		return
	}
	c.responseBuilder.WriteSuccess(w, r, profile)
}

// GetBadgeBoard handles GET /api/v1/users/me/badges
func (c *UserController) GetBadgeBoard(w http.ResponseWriter, r *http.Request) {
	board, err := c.serviceCollection.ProfileService.GetBadgeBoard(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, board)
}

// ===============================
// PUBLIC ENDPOINTS
// ===============================

// ListBadges handles GET /api/v1/badges
func (c *UserController) ListBadges(w http.ResponseWriter, r *http.Request) {
	defs := c.serviceCollection.ProfileService.ListBadges(r.Context())

	c.responseBuilder.WriteSuccess(w, r, &services.BadgeBoard{
		Rows:       badges.Group(defs, nil),
		TotalCount: len(defs),
	})
}
