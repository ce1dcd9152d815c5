package router

import (
	"net/http"

	"cinehub/internal/handlers/api/v1/comments"
	"cinehub/internal/handlers/api/v1/interactions"
	"cinehub/internal/handlers/api/v1/lists"
	"cinehub/internal/handlers/api/v1/users"
	"cinehub/internal/middleware"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AddAPIv1Routes registers the v1 API on r, which is already scoped to /api/v1
func AddAPIv1Routes(
	r *mux.Router,
	serviceCollection *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) {
	interactionController := interactions.NewInteractionController(serviceCollection, logger, responseBuilder)
	commentController := comments.NewCommentController(serviceCollection, logger, responseBuilder)
	listController := lists.NewListController(serviceCollection, logger, responseBuilder)
	userController := users.NewUserController(serviceCollection, logger, responseBuilder)

	// ===============================
	// PUBLIC ENDPOINTS
	// ===============================

	public := r.NewRoute().Subrouter()
	public.HandleFunc("/badges", userController.ListBadges).Methods(http.MethodGet)
	public.HandleFunc("/items/{itemID}/stats", interactionController.GetItemStats).Methods(http.MethodGet)

	// ===============================
	// OPTIONAL AUTH ENDPOINTS
	// ===============================

	optional := r.NewRoute().Subrouter()
	optional.Use(authMiddleware.OptionalAuth())
	optional.HandleFunc("/items/{itemID}/comments", commentController.ListComments).Methods(http.MethodGet)

	// ===============================
	// AUTHENTICATED ENDPOINTS
	// ===============================

	authed := r.NewRoute().Subrouter()
	authed.Use(authMiddleware.RequireAuth())

	authed.HandleFunc("/users/me", userController.Register).Methods(http.MethodPost)
	authed.HandleFunc("/users/me/profile", userController.GetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/badges", userController.GetBadgeBoard).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/genre-stats", interactionController.AdjustGenreStats).Methods(http.MethodPost)
	authed.HandleFunc("/users/me/collections/{collection}", interactionController.ListCollection).Methods(http.MethodGet)

	authed.HandleFunc("/items/{itemID}/interactions/{collection}", interactionController.ToggleInteraction).Methods(http.MethodPost)
	authed.HandleFunc("/items/{itemID}/interactions/{collection}", interactionController.GetItemStatus).Methods(http.MethodGet)
	authed.HandleFunc("/items/{itemID}/comments", commentController.SubmitComment).Methods(http.MethodPost)

	authed.HandleFunc("/users/me/lists", listController.GetLists).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/lists", listController.CreateList).Methods(http.MethodPost)
	authed.HandleFunc("/users/me/lists/{listID}", listController.GetList).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/lists/{listID}/items", listController.AddItem).Methods(http.MethodPost)

	// ===============================
	// MODERATOR ENDPOINTS
	// ===============================

	moderators := r.NewRoute().Subrouter()
	moderators.Use(authMiddleware.RequireAuth(), authMiddleware.RequireModerator())
	moderators.HandleFunc("/comments/{commentID}/moderation", commentController.ModerateComment).Methods(http.MethodPost)
}
