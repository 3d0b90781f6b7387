package services

import (
	"errors"
	"fmt"
	"time"

	"donelist/donelist/database"
	"donelist/donelist/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxTags      = 10
	maxTagLength = 50
)

type TodoServiceInterface interface {
	CreateTodo(db *database.Database, userID uuid.UUID, input models.TodoCreate) (models.Todo, error)
	GetTodoById(db *database.Database, userID uuid.UUID, id string) (models.Todo, error)
	GetTodos(db *database.Database, userID uuid.UUID, params map[string]interface{}) ([]models.Todo, error)
	UpdateTodo(db *database.Database, userID uuid.UUID, id string, input models.TodoUpdate) (models.Todo, error)
	DeleteTodo(db *database.Database, userID uuid.UUID, id string) error
	CompleteTodo(db *database.Database, userID uuid.UUID, id string) (models.Todo, *models.Todo, error)
	GetTodosDueSoon(db *database.Database, userID uuid.UUID, hours int) ([]models.Todo, error)
}

type TodoService struct{}

func validPriority(p string) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}

func validRecurrence(r string) bool {
	switch r {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return true
	}
	return false
}

func validateTags(tags models.TodoTags) error {
	if len(tags) > maxTags {
		return fmt.Errorf("%w: maximum %d tags allowed", ErrValidation, maxTags)
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" || len(tag) > maxTagLength {
			return fmt.Errorf("%w: tag must be 1-%d characters", ErrValidation, maxTagLength)
		}
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("%w: duplicate tags are not allowed", ErrValidation)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

func markOverdue(todos []models.Todo) {
	now := time.Now().UTC()
	for i := range todos {
		todos[i].Overdue = todos[i].IsOverdue(now)
	}
}

func (s *TodoService) CreateTodo(db *database.Database, userID uuid.UUID, input models.TodoCreate) (models.Todo, error) {
	if input.Title == "" {
		return models.Todo{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriority(priority) {
		return models.Todo{}, fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
	}

	recurrence := input.Recurrence
	if recurrence == "" {
		recurrence = models.RecurrenceNone
	}
	if !validRecurrence(recurrence) {
		return models.Todo{}, fmt.Errorf("%w: recurrence must be one of none, daily, weekly, monthly", ErrValidation)
	}
	if recurrence != models.RecurrenceNone && input.DueDate == nil {
		return models.Todo{}, fmt.Errorf("%w: recurrence requires due_date to be set", ErrValidation)
	}

	if err := validateTags(input.Tags); err != nil {
		return models.Todo{}, err
	}

	tags := input.Tags
	if tags == nil {
		tags = models.TodoTags{}
	}

	todo := models.Todo{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		Priority:    priority,
		Tags:        tags,
		DueDate:     input.DueDate,
		Recurrence:  recurrence,
	}

	if err := db.DB.Create(&todo).Error; err != nil {
		return models.Todo{}, err
	}

	todo.Overdue = todo.IsOverdue(time.Now().UTC())
	return todo, nil
}

func (s *TodoService) GetTodoById(db *database.Database, userID uuid.UUID, id string) (models.Todo, error) {
	var todo models.Todo
	if err := db.DB.First(&todo, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Todo{}, ErrTodoNotFound
		}
		return models.Todo{}, err
	}
	todo.Overdue = todo.IsOverdue(time.Now().UTC())
	return todo, nil
}

func (s *TodoService) GetTodos(db *database.Database, userID uuid.UUID, params map[string]interface{}) ([]models.Todo, error) {
	query := db.DB.Where("user_id = ?", userID)

	if completed, ok := params["completed"].(bool); ok {
		query = query.Where("completed = ?", completed)
	}

	if priority, ok := params["priority"].(string); ok && priority != "" {
		query = query.Where("priority = ?", priority)
	}

	if search, ok := params["search"].(string); ok && search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if tag, ok := params["tag"].(string); ok && tag != "" {
		// CAST works on both postgres jsonb and the sqlite fallback
		query = query.Where(`CAST(tags AS TEXT) LIKE ?`, `%"`+tag+`"%`)
	}

	if dueBefore, ok := params["due_before"].(time.Time); ok {
		query = query.Where("due_date <= ?", dueBefore)
	}

	if dueAfter, ok := params["due_after"].(time.Time); ok {
		query = query.Where("due_date >= ?", dueAfter)
	}

	query = applySort(query, params)

	var todos []models.Todo
	if err := query.Find(&todos).Error; err != nil {
		return nil, err
	}
	markOverdue(todos)
	return todos, nil
}

// applySort orders the result set. The default is creation time ascending;
// priority sorts high before low regardless of direction requested.
func applySort(query *gorm.DB, params map[string]interface{}) *gorm.DB {
	sortBy, _ := params["sort_by"].(string)
	sortOrder, _ := params["sort_order"].(string)

	direction := "asc"
	if sortOrder == "desc" {
		direction = "desc"
	}

	switch sortBy {
	case "priority":
		return query.Order("CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END asc")
	case "due_date":
		return query.Order("due_date " + direction)
	case "title":
		return query.Order("title " + direction)
	case "created_at":
		return query.Order("created_at " + direction)
	default:
		return query.Order("created_at asc")
	}
}

func (s *TodoService) UpdateTodo(db *database.Database, userID uuid.UUID, id string, input models.TodoUpdate) (models.Todo, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Todo{}, tx.Error
	}

	var todo models.Todo
	if err := tx.First(&todo, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Todo{}, ErrTodoNotFound
		}
		return models.Todo{}, err
	}

	updates, err := buildUpdates(todo, input)
	if err != nil {
		tx.Rollback()
		return models.Todo{}, err
	}

	if len(updates) > 0 {
		if err := tx.Model(&todo).Updates(updates).Error; err != nil {
			tx.Rollback()
			return models.Todo{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Todo{}, err
	}

	todo.Overdue = todo.IsOverdue(time.Now().UTC())
	return todo, nil
}

// buildUpdates maps provided fields to a column update set. Only fields
// present in the request are touched, so false and "" survive round trips.
func buildUpdates(existing models.Todo, input models.TodoUpdate) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		updates["title"] = *input.Title
	}

	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if input.Completed != nil {
		updates["completed"] = *input.Completed
	}

	if input.Priority != nil {
		if !validPriority(*input.Priority) {
			return nil, fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
		}
		updates["priority"] = *input.Priority
	}

	if input.Tags != nil {
		if err := validateTags(*input.Tags); err != nil {
			return nil, err
		}
		updates["tags"] = *input.Tags
	}

	effectiveDue := existing.DueDate
	if input.DueDateSet {
		effectiveDue = input.DueDate
		updates["due_date"] = input.DueDate
	}

	effectiveRecurrence := existing.Recurrence
	if input.Recurrence != nil {
		if !validRecurrence(*input.Recurrence) {
			return nil, fmt.Errorf("%w: recurrence must be one of none, daily, weekly, monthly", ErrValidation)
		}
		effectiveRecurrence = *input.Recurrence
		updates["recurrence"] = *input.Recurrence
	}

	if effectiveRecurrence != "" && effectiveRecurrence != models.RecurrenceNone && effectiveDue == nil {
		return nil, fmt.Errorf("%w: recurrence requires due_date to be set", ErrValidation)
	}

	return updates, nil
}

func (s *TodoService) DeleteTodo(db *database.Database, userID uuid.UUID, id string) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var todo models.Todo
	if err := tx.First(&todo, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTodoNotFound
		}
		return err
	}

	if err := tx.Delete(&todo).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}

	return nil
}

func (s *TodoService) CompleteTodo(db *database.Database, userID uuid.UUID, id string) (models.Todo, *models.Todo, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Todo{}, nil, tx.Error
	}

	var todo models.Todo
	if err := tx.First(&todo, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Todo{}, nil, ErrTodoNotFound
		}
		return models.Todo{}, nil, err
	}

	if todo.Completed {
		// Completing twice is a no-op
		tx.Rollback()
		return todo, nil, nil
	}

	if err := tx.Model(&todo).Updates(map[string]interface{}{"completed": true}).Error; err != nil {
		tx.Rollback()
		return models.Todo{}, nil, err
	}

	var next *models.Todo
	if todo.Recurrence != models.RecurrenceNone && todo.DueDate != nil {
		nextDue := nextDueDate(*todo.DueDate, todo.Recurrence)
		nextTodo := models.Todo{
			ID:          uuid.New(),
			UserID:      todo.UserID,
			Title:       todo.Title,
			Description: todo.Description,
			Completed:   false,
			Priority:    todo.Priority,
			Tags:        todo.Tags,
			DueDate:     &nextDue,
			Recurrence:  todo.Recurrence,
		}
		if err := tx.Create(&nextTodo).Error; err != nil {
			tx.Rollback()
			return models.Todo{}, nil, err
		}
		next = &nextTodo
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Todo{}, nil, err
	}

	return todo, next, nil
}

// nextDueDate advances a due date by one recurrence interval. Monthly
// recurrence clamps to the last day of shorter months.
func nextDueDate(due time.Time, recurrence string) time.Time {
	switch recurrence {
	case models.RecurrenceDaily:
		return due.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		return due.AddDate(0, 0, 7)
	case models.RecurrenceMonthly:
		year, month, day := due.Date()
		month++
		if month > time.December {
			month = time.January
			year++
		}
		lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, due.Location()).Day()
		if day > lastDay {
			day = lastDay
		}
		return time.Date(year, month, day, due.Hour(), due.Minute(), due.Second(), due.Nanosecond(), due.Location())
	}
	return due
}

func (s *TodoService) GetTodosDueSoon(db *database.Database, userID uuid.UUID, hours int) ([]models.Todo, error) {
	now := time.Now().UTC()
	threshold := now.Add(time.Duration(hours) * time.Hour)

	var todos []models.Todo
	err := db.DB.
		Where("user_id = ?", userID).
		Where("completed = ?", false).
		Where("due_date IS NOT NULL").
		Where("due_date >= ? AND due_date <= ?", now, threshold).
		Order("due_date asc").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	markOverdue(todos)
	return todos, nil
}

var TodoServiceInstance TodoServiceInterface = &TodoService{}
