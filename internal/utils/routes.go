package utils

import "github.com/gin-gonic/gin"

// Routes groups the same base path under the three access levels handlers
// register against.
type Routes struct {
	// Public is open but rate limited.
	Public *gin.RouterGroup
	// Secured requires a valid access token.
	Secured *gin.RouterGroup
	// Admin requires a valid access token of an admin.
	Admin *gin.RouterGroup
}
