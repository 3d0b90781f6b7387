package routes

import (
	"errors"
	"net/http"

	"donelist/donelist/database"
	"donelist/donelist/services"

	"github.com/gin-gonic/gin"
)

type userUpdateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterUserRoutes(group *gin.RouterGroup, db *database.Database, userService services.UserServiceInterface) {
	group.GET("/users/:id", func(c *gin.Context) { GetUserById(c, db, userService) })
	group.PUT("/users/:id", func(c *gin.Context) { UpdateUser(c, db, userService) })
	group.DELETE("/users/:id", func(c *gin.Context) { DeleteUser(c, db, userService) })
}

// requireSelf rejects requests targeting another user's account.
func requireSelf(c *gin.Context) (string, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return "", false
	}

	id := c.Param("id")
	if id != userID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this user"})
		return "", false
	}
	return id, true
}

func GetUserById(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, ok := requireSelf(c)
	if !ok {
		return
	}

	user, err := userService.GetUserById(db, id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

func UpdateUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, ok := requireSelf(c)
	if !ok {
		return
	}

	var request userUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := userService.UpdateUser(db, id, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

func DeleteUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, ok := requireSelf(c)
	if !ok {
		return
	}

	if err := userService.DeleteUser(db, id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
