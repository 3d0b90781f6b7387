package routes

import (
	"net/http"
	"time"

	"donelist/donelist/database"
	"donelist/donelist/models"

	"github.com/gin-gonic/gin"
)

// SetupDebugRoutes sets up routes for debugging. Only registered when the
// app runs in development mode.
func SetupDebugRoutes(router *gin.Engine, db *database.Database) {
	debugGroup := router.Group("/api/v1/debug")
	{
		debugGroup.GET("/todo-exists/:id", func(c *gin.Context) {
			id := c.Param("id")

			var todo models.Todo
			result := db.DB.Where("id = ?", id).First(&todo)

			if result.Error != nil {
				c.JSON(http.StatusOK, gin.H{
					"exists": false,
					"error":  result.Error.Error(),
					"time":   time.Now(),
				})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"exists":    true,
				"id":        todo.ID,
				"title":     todo.Title,
				"completed": todo.Completed,
				"time":      time.Now(),
			})
		})

		debugGroup.GET("/stats", func(c *gin.Context) {
			var total, pending int64
			db.DB.Model(&models.Todo{}).Count(&total)
			db.DB.Model(&models.Todo{}).Where("completed = ?", false).Count(&pending)

			c.JSON(http.StatusOK, gin.H{
				"todos":   total,
				"pending": pending,
				"time":    time.Now(),
			})
		})
	}
}
