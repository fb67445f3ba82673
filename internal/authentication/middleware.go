package authentication

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehmetcc/videotube-auth-service/internal/person"
	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

type AccessTokenParser interface {
	ParseAccessToken(tokenString string) (*utils.AccessClaims, error)
}

// AuthMiddleware accepts the access token from the accessToken cookie or a
// Bearer Authorization header and stores the loaded Person on the context.
func AuthMiddleware(personService person.PersonService, parser AccessTokenParser, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := accessTokenFrom(c)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("unauthorized request"), logger)
			return
		}

		claims, err := parser.ParseAccessToken(rawToken)
		if err != nil {
			logger.Debug("access token rejected", zap.Error(err))
			utils.RespondError(c, utils.Unauthorized("invalid or expired access token").WithCause(err), logger)
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, strconv.IntSize)
		if err != nil {
			logger.Warn("invalid subject claim", zap.String("subject", claims.Subject))
			utils.RespondError(c, utils.Unauthorized("invalid token subject"), logger)
			return
		}

		user, err := personService.ReadPersonByID(c.Request.Context(), uint(userID))
		if err != nil {
			if errors.Is(err, person.ErrPersonNotFound) {
				utils.RespondError(c, utils.Unauthorized("invalid access token").WithCause(err), logger)
				return
			}
			utils.RespondError(c, err, logger)
			return
		}

		c.Set(person.ContextUserKey, user)
		c.Next()
	}
}

func RoleMiddleware(requiredRole person.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := person.CurrentPerson(c)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("unauthorized request"), logger)
			return
		}
		if user.Role != requiredRole {
			utils.RespondError(c, utils.Forbidden("forbidden"), logger)
			return
		}
		c.Next()
	}
}

func accessTokenFrom(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1], true
	}
	return "", false
}
