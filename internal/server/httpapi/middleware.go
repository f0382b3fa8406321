package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avasiljevs/stockroom/internal/server/auth"
)

// usernameKey is the gin context key under which the middleware stores the
// authenticated subject.
const usernameKey = "username"

// requireAuth rejects requests without a valid Bearer access token and
// records the token subject for the handlers downstream.
func requireAuth(cfg auth.SigningConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		username, err := auth.ParseToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(usernameKey, username)
		c.Next()
	}
}
