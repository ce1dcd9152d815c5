// ===============================
// FILE: internal/handlers/api/v1/interactions/interactions_controller.go
// ===============================

package interactions

import (
	"net/http"

	"cinehub/internal/contextutils"
	"cinehub/internal/models"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// InteractionController handles likes, watchlist and genre counter endpoints
type InteractionController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
	pagination        *response.PaginationConfig
}

// NewInteractionController creates a new interaction controller
func NewInteractionController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *InteractionController {
	return &InteractionController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
		pagination:        response.DefaultPaginationConfig(),
	}
}

// toggleBody is the wire shape of a toggle request
type toggleBody struct {
	Adding   bool                `json:"adding"`
	Item     models.ItemMetadata `json:"item"`
	GenreIDs []int               `json:"genre_ids"`
}

// ToggleInteraction handles POST /api/v1/items/{itemID}/interactions/{collection}
func (c *InteractionController) ToggleInteraction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body toggleBody
	if err := response.DecodeJSON(w, r, &body); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	toggle := services.ToggleInteractionRequest{
		UserID:     contextutils.GetUserID(r.Context()),
		ItemID:     vars["itemID"],
		Collection: models.Collection(vars["collection"]),
		IsAdding:   body.Adding,
		Metadata:   body.Item,
	}

	service := c.serviceCollection.InteractionService

	var (
		result *services.ToggleResult
		err    error
	)
	if toggle.Collection == models.CollectionFavorites {
		result, err = service.LikeItem(r.Context(), &services.LikeItemRequest{
			ToggleInteractionRequest: toggle,
			GenreIDs:                 body.GenreIDs,
		})
	} else {
		result, err = service.ToggleInteraction(r.Context(), &toggle)
	}
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}

// GetItemStatus handles GET /api/v1/items/{itemID}/interactions/{collection}
func (c *InteractionController) GetItemStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	status, err := c.serviceCollection.InteractionService.CheckItemStatus(
		r.Context(),
		contextutils.GetUserID(r.Context()),
		models.Collection(vars["collection"]),
		vars["itemID"],
	)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, status)
}

// GetItemStats handles GET /api/v1/items/{itemID}/stats
func (c *InteractionController) GetItemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.serviceCollection.InteractionService.GetItemStats(r.Context(), mux.Vars(r)["itemID"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, stats)
}

// ListCollection handles GET /api/v1/users/me/collections/{collection}
func (c *InteractionController) ListCollection(w http.ResponseWriter, r *http.Request) {
	page, err := response.ParsePage(r.URL.Query(), c.pagination)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	items, err := c.serviceCollection.InteractionService.ListInteractions(
		r.Context(),
		contextutils.GetUserID(r.Context()),
		models.Collection(mux.Vars(r)["collection"]),
		page.Params(),
	)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.Interaction{}
	}

	c.responseBuilder.WritePaginated(w, r, items, page, len(items))
}

// AdjustGenreStats handles POST /api/v1/users/me/genre-stats
func (c *InteractionController) AdjustGenreStats(w http.ResponseWriter, r *http.Request) {
	var req services.AdjustGenreStatsRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	if err := c.serviceCollection.InteractionService.AdjustGenreStats(r.Context(), &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Debug("Genre stats adjusted",
		zap.String("user_id", req.UserID),
		zap.Ints("genre_ids", req.GenreIDs),
		zap.Bool("adding", req.IsAdding),
	)

	w.WriteHeader(http.StatusNoContent)
}
