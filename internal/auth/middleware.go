package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RoleResolver looks up the current role of a token's subject.
// It returns an error when the user no longer exists or was deactivated.
type RoleResolver interface {
	IsSystemAdmin(ctx context.Context, userID string) (bool, error)
}

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
// and resolves the caller's admin flag.
func AuthRequired(jwtManager *JWTManager, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
				"kind":  "unauthorized",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
				"kind":  "unauthorized",
			})
			return
		}

		claims, err := jwtManager.ParseAndValidate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
				"kind":  "unauthorized",
			})
			return
		}

		isAdmin, err := roles.IsSystemAdmin(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "user not found or inactive",
				"kind":  "unauthorized",
			})
			return
		}

		SetIdentity(c, claims.UserID, claims.Email, isAdmin)

		c.Next()
	}
}
