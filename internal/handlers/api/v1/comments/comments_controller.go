// ===============================
// FILE: internal/handlers/api/v1/comments/comments_controller.go
// ===============================

package comments

import (
	"net/http"

	"cinehub/internal/contextutils"
	"cinehub/internal/models"
	"cinehub/internal/response"
	"cinehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CommentController handles comment API endpoints
type CommentController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
	pagination        *response.PaginationConfig
}

// NewCommentController creates a new comment controller
func NewCommentController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *CommentController {
	return &CommentController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
		pagination:        response.DefaultPaginationConfig(),
	}
}

// ===============================
// COMMENT ENDPOINTS
// ===============================

// SubmitComment handles POST /api/v1/items/{itemID}/comments
func (c *CommentController) SubmitComment(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitCommentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	req.ItemID = mux.Vars(r)["itemID"]
	if identity := contextutils.GetIdentity(r.Context()); identity != nil {
		req.UserID = identity.UserID
		req.UserName = identity.Name
		req.UserAvatarURL = identity.AvatarURL
	}

	result, err := c.serviceCollection.CommentService.SubmitComment(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if len(result.NewBadges) > 0 {
		c.logger.Info("Comment earned badges",
			zap.String("user_id", req.UserID),
			zap.String("comment_id", result.Comment.ID),
			zap.Int("new_badges", len(result.NewBadges)),
		)
	}

	c.responseBuilder.WriteMessage(w, r, http.StatusCreated, result, result.Message)
}

// ListComments handles GET /api/v1/items/{itemID}/comments
func (c *CommentController) ListComments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := response.ParsePage(query, c.pagination)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}
	params := page.Params()

	comments, err := c.serviceCollection.CommentService.ListComments(r.Context(), &services.ListCommentsRequest{
		ItemID:    mux.Vars(r)["itemID"],
		MediaType: models.MediaType(query.Get("media_type")),
		ViewerID:  contextutils.GetUserID(r.Context()),
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	c.responseBuilder.WritePaginated(w, r, comments, page, len(comments))
}

// ModerateComment handles POST /api/v1/comments/{commentID}/moderation
func (c *CommentController) ModerateComment(w http.ResponseWriter, r *http.Request) {
	var req services.ModerateCommentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.CommentID = mux.Vars(r)["commentID"]
	req.ModeratorID = contextutils.GetUserID(r.Context())

	comment, err := c.serviceCollection.CommentService.ModerateComment(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Comment moderated",
		zap.String("comment_id", comment.ID),
		zap.String("moderator_id", req.ModeratorID),
		zap.String("status", comment.Status.String()),
	)

	c.responseBuilder.WriteSuccess(w, r, comment)
}
