package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Roles as asserted by the upstream gateway. Authentication itself
// happens before requests reach this service; we only read the
// identity headers it sets.
const (
	RoleAdmin    = "admin"
	RoleProvider = "provider"
	RoleRenter   = "renter"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	headerUserID = "X-User-ID"
	headerRole   = "X-User-Role"
)

// ActorContext copies the gateway identity headers into the request
// context so handlers can enforce role policy.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v := c.GetHeader(headerUserID); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
				c.Set(ctxUserID, id)
			}
		}
		if v := c.GetHeader(headerRole); v != "" {
			c.Set(ctxRole, v)
		}
		c.Next()
	}
}

// Actor returns the calling user's id and role; zero values when the
// headers were absent or malformed.
func Actor(c *gin.Context) (int64, string) {
	return c.GetInt64(ctxUserID), c.GetString(ctxRole)
}
