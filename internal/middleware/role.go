package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/church-console/backend/pkg/response"
)

// Console roles carried in the token's role claim.
const (
	RoleAdmin     = "admin"
	RoleTreasurer = "treasurer"
	RoleStaff     = "staff"
)

// RequireRole returns a middleware that allows only the given roles. It must run after JWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		val, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := val.(string)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
