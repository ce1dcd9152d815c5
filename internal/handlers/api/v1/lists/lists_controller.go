// ===============================
// FILE: internal/handlers/api/v1/lists/lists_controller.go
// ===============================

package lists

import (
	"net/http"

	"cinehub/internal/contextutils"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ListController handles custom list endpoints
type ListController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewListController creates a new list controller
func NewListController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ListController {
	return &ListController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// CreateList handles POST /api/v1/users/me/lists
func (c *ListController) CreateList(w http.ResponseWriter, r *http.Request) {
	var req services.CreateListRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	list, err := c.serviceCollection.ListService.CreateList(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, list)
}

// GetLists handles GET /api/v1/users/me/lists
func (c *ListController) GetLists(w http.ResponseWriter, r *http.Request) {
	lists, err := c.serviceCollection.ListService.GetLists(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, lists)
}

// GetList handles GET /api/v1/users/me/lists/{listID}
func (c *ListController) GetList(w http.ResponseWriter, r *http.Request) {
	list, err := c.serviceCollection.ListService.GetList(
		r.Context(),
		contextutils.GetUserID(r.Context()),
		mux.Vars(r)["listID"],
	)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, list)
}

// AddItem handles POST /api/v1/users/me/lists/{listID}/items
func (c *ListController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req services.AddListItemRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())
	req.ListID = mux.Vars(r)["listID"]

	result, err := c.serviceCollection.ListService.AddItemToList(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Added {
		status = http.StatusCreated
	}
	c.responseBuilder.WriteJSON(w, r, c.responseBuilder.Success(r.Context(), result), status)
}
