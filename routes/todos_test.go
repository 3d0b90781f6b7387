package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"donelist/donelist/database"
	"donelist/donelist/models"
	"donelist/donelist/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var testUserID = uuid.Must(uuid.Parse("90a12345-f12a-98c4-a456-513432930000"))

const knownTodoID = "123e4567-e89b-12d3-a456-426614174000"

type MockTodoService struct{}

func (m *MockTodoService) CreateTodo(db *database.Database, userID uuid.UUID, input models.TodoCreate) (models.Todo, error) {
	if input.Title == "" {
		return models.Todo{}, services.ErrValidation
	}
	return models.Todo{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    models.PriorityMedium,
		Recurrence:  models.RecurrenceNone,
	}, nil
}

func (m *MockTodoService) GetTodoById(db *database.Database, userID uuid.UUID, id string) (models.Todo, error) {
	if id == knownTodoID {
		return models.Todo{ID: uuid.Must(uuid.Parse(id)), UserID: userID, Title: "Buy milk"}, nil
	}
	return models.Todo{}, services.ErrTodoNotFound
}

func (m *MockTodoService) GetTodos(db *database.Database, userID uuid.UUID, params map[string]interface{}) ([]models.Todo, error) {
	todos := []models.Todo{
		{ID: uuid.Must(uuid.Parse(knownTodoID)), UserID: testUserID, Title: "Buy milk", Completed: false},
		{ID: uuid.Must(uuid.Parse("123e4567-e89b-12d3-a456-426614174001")), UserID: testUserID, Title: "Walk dog", Completed: true},
	}

	if completed, ok := params["completed"].(bool); ok {
		var filtered []models.Todo
		for _, todo := range todos {
			if todo.Completed == completed {
				filtered = append(filtered, todo)
			}
		}
		todos = filtered
	}

	return todos, nil
}

func (m *MockTodoService) UpdateTodo(db *database.Database, userID uuid.UUID, id string, input models.TodoUpdate) (models.Todo, error) {
	if id != knownTodoID {
		return models.Todo{}, services.ErrTodoNotFound
	}
	todo := models.Todo{ID: uuid.Must(uuid.Parse(id)), UserID: userID, Title: "Buy milk"}
	if input.Title != nil {
		if *input.Title == "" {
			return models.Todo{}, services.ErrValidation
		}
		todo.Title = *input.Title
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}
	return todo, nil
}

func (m *MockTodoService) DeleteTodo(db *database.Database, userID uuid.UUID, id string) error {
	if id != knownTodoID {
		return services.ErrTodoNotFound
	}
	return nil
}

func (m *MockTodoService) CompleteTodo(db *database.Database, userID uuid.UUID, id string) (models.Todo, *models.Todo, error) {
	if id != knownTodoID {
		return models.Todo{}, nil, services.ErrTodoNotFound
	}
	due := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	completed := models.Todo{ID: uuid.Must(uuid.Parse(id)), UserID: userID, Title: "Water plants", Completed: true}
	next := models.Todo{ID: uuid.New(), UserID: userID, Title: "Water plants", DueDate: &due, Recurrence: models.RecurrenceDaily}
	return completed, &next, nil
}

func (m *MockTodoService) GetTodosDueSoon(db *database.Database, userID uuid.UUID, hours int) ([]models.Todo, error) {
	return []models.Todo{
		{ID: uuid.Must(uuid.Parse(knownTodoID)), UserID: userID, Title: "Submit report"},
	}, nil
}

func setupTodoRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	db := &database.Database{}

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	RegisterTodoRoutes(apiGroup, db, &MockTodoService{})
	return router
}

func TestCreateTodo(t *testing.T) {
	router := setupTodoRouter()

	t.Run("Valid JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/todos", bytes.NewBuffer([]byte(`{"title":"Buy milk"}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Buy milk")
	})

	t.Run("Missing Title", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/todos", bytes.NewBuffer([]byte(`{"description":"no title"}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/todos", bytes.NewBuffer([]byte(`{"title"`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetTodoById(t *testing.T) {
	router := setupTodoRouter()

	t.Run("Todo Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos/123e4567-e89b-12d3-a456-426614174999", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Todo Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos/"+knownTodoID, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Buy milk")
	})
}

func TestGetTodos(t *testing.T) {
	router := setupTodoRouter()

	t.Run("All", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Buy milk")
		assert.Contains(t, w.Body.String(), "Walk dog")
	})

	t.Run("Completed Filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos?completed=true", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Walk dog")
		assert.NotContains(t, w.Body.String(), "Buy milk")
	})

	t.Run("Numeric Completed Filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos?completed=1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Walk dog")
		assert.NotContains(t, w.Body.String(), "Buy milk")
	})

	t.Run("Invalid Completed Filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos?completed=yes", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Due Filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos?due_before=not-a-date", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateTodo(t *testing.T) {
	router := setupTodoRouter()

	t.Run("Todo Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/todos/123e4567-e89b-12d3-a456-426614174999", bytes.NewBuffer([]byte(`{"title":"Updated"}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Todo Updated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/todos/"+knownTodoID, bytes.NewBuffer([]byte(`{"title":"Updated"}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Updated")
	})

	t.Run("Patch Completed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/v1/todos/"+knownTodoID, bytes.NewBuffer([]byte(`{"completed":true}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"completed":true`)
	})

	t.Run("Empty Title Rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/todos/"+knownTodoID, bytes.NewBuffer([]byte(`{"title":""}`)))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteTodo(t *testing.T) {
	router := setupTodoRouter()

	t.Run("Todo Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/todos/123e4567-e89b-12d3-a456-426614174999", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Todo Deleted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/todos/"+knownTodoID, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCompleteTodo(t *testing.T) {
	router := setupTodoRouter()

	t.Run("Todo Not Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/v1/todos/123e4567-e89b-12d3-a456-426614174999/complete", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Recurring Returns Next Task", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/v1/todos/"+knownTodoID+"/complete", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response, "completed_task")
		assert.Contains(t, response, "next_task")
	})
}

func TestGetTodosDueSoon(t *testing.T) {
	router := setupTodoRouter()

	t.Run("Default Window", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos/due-soon", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Submit report")
		assert.Contains(t, w.Body.String(), `"count":1`)
	})

	t.Run("Hours Out Of Range", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/todos/due-soon?hours=48", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTodoRoutesRequireAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	db := &database.Database{}

	// No middleware setting userID
	apiGroup := router.Group("/api/v1")
	RegisterTodoRoutes(apiGroup, db, &MockTodoService{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/todos", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
