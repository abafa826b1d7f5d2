package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"buildtrack/internal/model"
	"buildtrack/internal/repository"
	"buildtrack/pkg/rbac"
)

// currentUser resolves the authenticated user from the request context.
// Clients are loaded from the store so their assigned-project list is
// available for visibility filtering; other roles only need id and role.
func currentUser(c *gin.Context, users *repository.UserRepository) (*model.User, bool) {
	userID, exists := c.Get("user_id")
	role, roleExists := c.Get("role")
	if !exists || !roleExists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	id, _ := userID.(string)
	r, _ := role.(string)

	if r == rbac.RoleClient {
		u, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return nil, false
		}
		return u, true
	}

	return &model.User{ID: id, Role: r}, true
}

// fullUser always loads the user record, for paths that need the display
// name (comment and media authorship).
func fullUser(c *gin.Context, users *repository.UserRepository) (*model.User, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}
	id, _ := userID.(string)
	u, err := users.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil, false
	}
	return u, true
}
