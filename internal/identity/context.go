package identity

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID    = "user_id"
	CtxAnonymous = "user_anonymous"
)

// UserID extracts the resolved identity from the Gin context.
// This is set by Middleware.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// IsAnonymous reports whether the request carries an anonymous identity.
func IsAnonymous(c *gin.Context) bool {
	return c.GetBool(CtxAnonymous)
}
