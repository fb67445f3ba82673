package tweet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehmetcc/videotube-auth-service/internal/person"
	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

// ContentRequest is the payload for creating or editing a tweet.
type ContentRequest struct {
	Content string `json:"content" binding:"required"`
}

type TweetIDRequest struct {
	TweetID uint `uri:"tweetId" binding:"required,min=1"`
}

type UserIDRequest struct {
	UserID uint `uri:"userId" binding:"required,min=1"`
}

// PageQuery is the pagination of the tweet listing.
type PageQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	SortType string `form:"sortType" binding:"omitempty,oneof=asc desc"`
}

type TweetHandler struct {
	service TweetService
	logger  *zap.Logger
}

// NewTweetHandler registers tweet endpoints. All of them need a signed-in user.
func NewTweetHandler(routes utils.Routes, service TweetService, logger *zap.Logger) *TweetHandler {
	h := &TweetHandler{service: service, logger: logger}
	routes.Secured.POST("/tweets", h.Create)
	routes.Secured.GET("/tweets/user/:userId", h.ListByUser)
	routes.Secured.PATCH("/tweets/:tweetId", h.Update)
	routes.Secured.DELETE("/tweets/:tweetId", h.Delete)
	return h
}

// Create godoc
// @Summary      Create tweet
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Param        payload  body      ContentRequest  true  "Tweet content"
// @Success      201      {object}  utils.APIResponse{data=Tweet}
// @Failure      400      {object}  utils.APIResponse
// @Failure      401      {object}  utils.APIResponse
// @Router       /tweets [post]
func (h *TweetHandler) Create(c *gin.Context) {
	user, ok := person.CurrentPerson(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("unauthorized request"), h.logger)
		return
	}
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BadRequest("tweet content is required"), h.logger)
		return
	}
	tweet, err := h.service.Create(c.Request.Context(), user.ID, req.Content)
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusCreated, tweet, "Tweeted successfully")
}

// ListByUser godoc
// @Summary      List tweets of a user
// @Tags         tweets
// @Produce      json
// @Param        userId    path   int     true   "Author ID"
// @Param        page      query  int     false  "Page number"
// @Param        limit     query  int     false  "Page size"
// @Param        sortType  query  string  false  "asc or desc"
// @Success      200  {object}  utils.APIResponse{data=TweetPage}
// @Failure      400  {object}  utils.APIResponse
// @Router       /tweets/user/{userId} [get]
func (h *TweetHandler) ListByUser(c *gin.Context) {
	var uri UserIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.RespondError(c, utils.BadRequest("invalid or missing user id"), h.logger)
		return
	}
	var query PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Debug("invalid page query", zap.Error(err))
		utils.RespondError(c, utils.BadRequest("invalid pagination parameters"), h.logger)
		return
	}
	page, err := h.service.ListByAuthor(c.Request.Context(), uri.UserID, Page{
		Number:    query.Page,
		Limit:     query.Limit,
		Ascending: query.SortType == "asc",
	})
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, page, "All tweets fetched successfully")
}

// Update godoc
// @Summary      Edit tweet
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Param        tweetId  path      int             true  "Tweet ID"
// @Param        payload  body      ContentRequest  true  "New content"
// @Success      200      {object}  utils.APIResponse{data=Tweet}
// @Failure      403      {object}  utils.APIResponse
// @Failure      404      {object}  utils.APIResponse
// @Router       /tweets/{tweetId} [patch]
func (h *TweetHandler) Update(c *gin.Context) {
	user, tweetID, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BadRequest("tweet content is required"), h.logger)
		return
	}
	tweet, err := h.service.Update(c.Request.Context(), user.ID, tweetID, req.Content)
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, tweet, "Tweet updated successfully")
}

// Delete godoc
// @Summary      Delete tweet
// @Tags         tweets
// @Param        tweetId  path  int  true  "Tweet ID"
// @Success      200  {object}  utils.APIResponse
// @Failure      403  {object}  utils.APIResponse
// @Failure      404  {object}  utils.APIResponse
// @Router       /tweets/{tweetId} [delete]
func (h *TweetHandler) Delete(c *gin.Context) {
	user, tweetID, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), user.ID, tweetID); err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, nil, "Tweet deleted successfully")
}

func (h *TweetHandler) ownerAndID(c *gin.Context) (*person.Person, uint, bool) {
	user, ok := person.CurrentPerson(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("unauthorized request"), h.logger)
		return nil, 0, false
	}
	var uri TweetIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.RespondError(c, utils.BadRequest("invalid or missing tweet id"), h.logger)
		return nil, 0, false
	}
	return user, uri.TweetID, true
}
