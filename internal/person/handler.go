package person

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

// ContextUserKey is the key under which the authenticated Person is stored in Gin context.
const ContextUserKey = "user"

// RegisterRequest represents the payload for creating a new account.
// @Description payload to register a new account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required,max=120"`
	Password string `json:"password" binding:"required"`
}

// UpdateAccountRequest represents the payload to update account details.
// @Description payload to change full name and email
type UpdateAccountRequest struct {
	FullName string `json:"fullName" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// PersonHandler handles HTTP requests for account resources.
type PersonHandler struct {
	service PersonService
	logger  *zap.Logger
}

// NewPersonHandler registers account endpoints on the given route groups.
func NewPersonHandler(routes utils.Routes, service PersonService, logger *zap.Logger) *PersonHandler {
	h := &PersonHandler{service: service, logger: logger}
	routes.Public.POST("/users/register", h.Register)
	routes.Secured.GET("/users/current-user", h.ReadCurrentPerson)
	routes.Secured.PATCH("/users/update-account", h.UpdateAccount)
	routes.Admin.GET("/users/:id", h.ReadPersonByID)
	routes.Admin.DELETE("/users/:id", h.DeletePerson)
	return h
}

// CurrentPerson returns the Person the auth middleware stored on the context.
func CurrentPerson(c *gin.Context) (*Person, bool) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	p, ok := raw.(*Person)
	return p, ok
}

func (h *PersonHandler) bindID(c *gin.Context) (uint, bool) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.RespondError(c, utils.BadRequest("invalid or missing id"), h.logger)
		return 0, false
	}
	return uri.ID, true
}

// Register godoc
// @Summary      Register
// @Description  Create a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      RegisterRequest  true  "Account payload"
// @Success      201      {object}  utils.APIResponse{data=Person}
// @Failure      400      {object}  utils.APIResponse
// @Failure      409      {object}  utils.APIResponse
// @Failure      500      {object}  utils.APIResponse
// @Router       /users/register [post]
func (h *PersonHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register payload", zap.Error(err))
		utils.RespondError(c, utils.BadRequest("all fields are required"), h.logger)
		return
	}
	p, err := h.service.Register(c.Request.Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusCreated, p, "User registered successfully")
}

// ReadCurrentPerson godoc
// @Summary      Current user
// @Description  Fetch the account of the authenticated user
// @Tags         users
// @Produce      json
// @Success      200 {object} utils.APIResponse{data=Person}
// @Failure      401 {object} utils.APIResponse
// @Router       /users/current-user [get]
func (h *PersonHandler) ReadCurrentPerson(c *gin.Context) {
	user, ok := CurrentPerson(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("unauthorized request"), h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccount godoc
// @Summary      Update account
// @Description  Change full name and email of the authenticated user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      UpdateAccountRequest  true  "Account details"
// @Success      200      {object}  utils.APIResponse{data=Person}
// @Failure      400      {object}  utils.APIResponse
// @Failure      401      {object}  utils.APIResponse
// @Failure      409      {object}  utils.APIResponse
// @Router       /users/update-account [patch]
func (h *PersonHandler) UpdateAccount(c *gin.Context) {
	user, ok := CurrentPerson(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("unauthorized request"), h.logger)
		return
	}
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update account payload", zap.Error(err))
		utils.RespondError(c, utils.BadRequest("all fields are required"), h.logger)
		return
	}
	p, err := h.service.UpdateAccountDetails(c.Request.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, p, "Account details updated successfully")
}

// ReadPersonByID godoc
// @Summary      Get user by ID
// @Description  Fetch an account by its ID (admin only)
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  utils.APIResponse{data=Person}
// @Failure      404  {object}  utils.APIResponse
// @Router       /users/{id} [get]
func (h *PersonHandler) ReadPersonByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	p, err := h.service.ReadPersonByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, p, "User fetched successfully")
}

// DeletePerson godoc
// @Summary      Delete user
// @Description  Remove an account by ID (admin only)
// @Tags         users
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  utils.APIResponse
// @Failure      404  {object}  utils.APIResponse
// @Router       /users/{id} [delete]
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePerson(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, nil, "User deleted successfully")
}
