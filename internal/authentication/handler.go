package authentication

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehmetcc/videotube-auth-service/internal/person"
	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// LoginRequest is the payload for logging in with either username or email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the fallback body when no refreshToken cookie is sent.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest is the payload for changing the current password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// CookieOptions controls the token cookies set next to the JSON payload.
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthHandler handles authentication-related HTTP endpoints.
type AuthHandler struct {
	service AuthenticationService
	cookies CookieOptions
	logger  *zap.Logger
}

// NewAuthHandler registers auth endpoints on the given route groups.
func NewAuthHandler(routes utils.Routes, service AuthenticationService, cookies CookieOptions, logger *zap.Logger) *AuthHandler {
	h := &AuthHandler{service: service, cookies: cookies, logger: logger}
	routes.Public.POST("/users/login", h.Login)
	routes.Public.POST("/users/refresh-token", h.Refresh)
	routes.Secured.POST("/users/logout", h.Logout)
	routes.Secured.POST("/users/change-password", h.ChangePassword)
	return h
}

// Login godoc
// @Summary      Login
// @Description  Authenticate with username or email and issue tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  utils.APIResponse{data=LoginResult}
// @Failure      400      {object}  utils.APIResponse
// @Failure      401      {object}  utils.APIResponse
// @Failure      404      {object}  utils.APIResponse
// @Failure      500      {object}  utils.APIResponse
// @Router       /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
		utils.RespondError(c, utils.BadRequest("username or email and password are required"), h.logger)
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	result, err := h.service.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	h.setTokenCookies(c, &result.TokenPair)
	utils.Respond(c, http.StatusOK, result, "User logged in successfully")
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Rotate the refresh token and issue a new pair. The token is read from the refreshToken cookie, or the request body when no cookie is present.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      RefreshRequest  false  "Refresh token payload"
// @Success      200      {object}  utils.APIResponse{data=utils.TokenPair}
// @Failure      401      {object}  utils.APIResponse
// @Failure      500      {object}  utils.APIResponse
// @Router       /users/refresh-token [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(RefreshTokenCookie)
	if token == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Debug("refresh without usable body", zap.Error(err))
		}
		token = req.RefreshToken
	}

	pair, err := h.service.RefreshAccessToken(c.Request.Context(), token)
	if err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	h.setTokenCookies(c, pair)
	utils.Respond(c, http.StatusOK, pair, "Access token refreshed")
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the refresh token of the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200      {object}  utils.APIResponse
// @Failure      401      {object}  utils.APIResponse
// @Failure      500      {object}  utils.APIResponse
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := person.CurrentPerson(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("unauthorized request"), h.logger)
		return
	}
	if err := h.service.Logout(c.Request.Context(), user.ID); err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	h.clearTokenCookies(c)
	utils.Respond(c, http.StatusOK, gin.H{}, "User logged out")
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replace the password of the authenticated user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      ChangePasswordRequest  true  "Old and new password"
// @Success      200      {object}  utils.APIResponse
// @Failure      400      {object}  utils.APIResponse
// @Failure      401      {object}  utils.APIResponse
// @Failure      500      {object}  utils.APIResponse
// @Router       /users/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := person.CurrentPerson(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("unauthorized request"), h.logger)
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid change password payload", zap.Error(err))
		utils.RespondError(c, utils.BadRequest("old and new password are required"), h.logger)
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		utils.RespondError(c, err, h.logger)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, pair *utils.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, pair.AccessToken, int(h.cookies.AccessTTL.Seconds()), "/", "", h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, pair.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), "/", "", h.cookies.Secure, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
}
