package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the JWT and puts the caller identity (the token
// subject, an email) into the context under "userEmail". The services
// re-resolve that identity against the user table on every operation, so
// the middleware itself never touches the database.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL query ?token=xxx (for downloads that cannot set headers)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			abortUnauthorized(c, "missing credentials")
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		if claims.Subject == "" {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set("userEmail", claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"timestamp":  time.Now().UTC(),
		"message":    msg,
		"details":    c.Request.Method + " " + c.Request.URL.Path,
		"statusCode": http.StatusUnauthorized,
	})
}
