package util

import (
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// GetUserFromContext extracts the authenticated user from the Gin context.
// Responds with 401 and returns false when the request is anonymous.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		RespondUnauthorized(c, "")
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok {
		RespondInternalError(c, "invalid user data in context")
		return nil, false
	}
	return user, true
}

// OptionalUserID returns the caller's id if the request is authenticated
func OptionalUserID(c *gin.Context) *string {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return nil
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}
