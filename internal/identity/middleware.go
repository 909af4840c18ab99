package identity

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Middleware resolves the acting identity for every data route. A Bearer
// token is verified through the resolver's verifier; an X-Session-Id
// header carries a previously minted anonymous identity, checked for
// presence only. Neither means the session never resolved, so the request
// is rejected rather than silently proceeding without identity.
func Middleware(resolver *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearer(c); token != "" {
			id, err := resolver.Resolve(c.Request.Context(), token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				c.Abort()
				return
			}
			c.Set(CtxUserID, id.UID)
			c.Set(CtxAnonymous, false)
			c.Next()
			return
		}

		if sessionID := strings.TrimSpace(c.GetHeader("X-Session-Id")); sessionID != "" {
			c.Set(CtxUserID, sessionID)
			c.Set(CtxAnonymous, true)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session identity"})
		c.Abort()
	}
}

// SessionRateLimit throttles session minting so anonymous identities
// cannot be churned out without bound.
func SessionRateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many session requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractBearer extracts the Bearer token from the Authorization header.
func extractBearer(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
