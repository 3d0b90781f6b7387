package routes

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"donelist/donelist/database"
	"donelist/donelist/models"
	"donelist/donelist/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RegisterTodoRoutes(group *gin.RouterGroup, db *database.Database, todoService services.TodoServiceInterface) {
	group.GET("/todos", func(c *gin.Context) { GetTodos(c, db, todoService) })
	group.POST("/todos", func(c *gin.Context) { CreateTodo(c, db, todoService) })
	group.GET("/todos/due-soon", func(c *gin.Context) { GetTodosDueSoon(c, db, todoService) })
	group.GET("/todos/:id", func(c *gin.Context) { GetTodoById(c, db, todoService) })
	group.PUT("/todos/:id", func(c *gin.Context) { UpdateTodo(c, db, todoService) })
	group.PATCH("/todos/:id", func(c *gin.Context) { UpdateTodo(c, db, todoService) })
	group.PATCH("/todos/:id/complete", func(c *gin.Context) { CompleteTodo(c, db, todoService) })
	group.DELETE("/todos/:id", func(c *gin.Context) { DeleteTodo(c, db, todoService) })
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return userIDInterface.(uuid.UUID), true
}

func CreateTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input models.TodoCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdTodo, err := todoService.CreateTodo(db, userID, input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, createdTodo)
}

func GetTodoById(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	todo, err := todoService.GetTodoById(db, userID, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, todo)
}

func GetTodos(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := make(map[string]interface{})

	for _, key := range []string{"priority", "search", "tag", "sort_by", "sort_order"} {
		if value := c.Query(key); value != "" {
			params[key] = value
		}
	}

	if completed := c.Query("completed"); completed != "" {
		value, err := strconv.ParseBool(completed)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "completed must be a boolean"})
			return
		}
		params["completed"] = value
	}

	if dueBefore := c.Query("due_before"); dueBefore != "" {
		t, err := time.Parse(time.RFC3339, dueBefore)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_before must be an RFC 3339 timestamp"})
			return
		}
		params["due_before"] = t
	}

	if dueAfter := c.Query("due_after"); dueAfter != "" {
		t, err := time.Parse(time.RFC3339, dueAfter)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_after must be an RFC 3339 timestamp"})
			return
		}
		params["due_after"] = t
	}

	todos, err := todoService.GetTodos(db, userID, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, todos)
}

func UpdateTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	var input models.TodoUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updatedTodo, err := todoService.UpdateTodo(db, userID, id, input)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updatedTodo)
}

func DeleteTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := todoService.DeleteTodo(db, userID, id); err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func CompleteTodo(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	completed, next, err := todoService.CompleteTodo(db, userID, id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"completed_task": completed}
	if next != nil {
		response["next_task"] = next
	}
	c.JSON(http.StatusOK, response)
}

func GetTodosDueSoon(c *gin.Context, db *database.Database, todoService services.TodoServiceInterface) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	hours := 1
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 24 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be an integer between 1 and 24"})
			return
		}
		hours = parsed
	}

	todos, err := todoService.GetTodosDueSoon(db, userID, hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"todos": todos, "count": len(todos)})
}
