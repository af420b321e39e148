package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID        = "userID"
	ctxUserEmail     = "userEmail"
	ctxIsSystemAdmin = "isSystemAdmin"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}

// IsSystemAdmin reports whether the authenticated user holds the system admin flag.
func IsSystemAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsSystemAdmin)
}

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c *gin.Context, userID, email string, isSystemAdmin bool) {
	c.Set(ctxUserID, userID)
	c.Set(ctxUserEmail, email)
	c.Set(ctxIsSystemAdmin, isSystemAdmin)
}
