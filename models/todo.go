package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Priority levels for todos
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Recurrence patterns for todos
const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// TodoTags stores the list of tags attached to a todo
type TodoTags []string

// Value implements the driver.Valuer interface for JSONB storage
func (tt TodoTags) Value() (driver.Value, error) {
	if tt == nil {
		return nil, nil
	}
	return json.Marshal(tt)
}

// Scan implements the sql.Scanner interface for JSONB retrieval
func (tt *TodoTags) Scan(value interface{}) error {
	if value == nil {
		*tt = make(TodoTags, 0)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, tt)
}

type Todo struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index;constraint:OnDelete:CASCADE;" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Priority    string     `gorm:"default:'medium'" json:"priority"`
	Tags        TodoTags   `gorm:"type:jsonb;default:'[]'" json:"tags"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Recurrence  string     `gorm:"default:'none'" json:"recurrence"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
	Overdue     bool       `gorm:"-" json:"overdue"`
}

// IsOverdue reports whether the todo has a due date in the past and is still pending.
func (t *Todo) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(now)
}

// TodoCreate is the request payload for creating a todo.
type TodoCreate struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	Tags        TodoTags   `json:"tags"`
	DueDate     *time.Time `json:"due_date"`
	Recurrence  string     `json:"recurrence"`
}

// TodoUpdate is the request payload for updating a todo. Pointer fields
// distinguish "not provided" from zero values so partial updates can clear
// a description or flip completed back to false. DueDateSet records whether
// the key appeared at all, so an explicit null clears the due date.
type TodoUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority"`
	Tags        *TodoTags  `json:"tags"`
	DueDate     *time.Time `json:"due_date"`
	DueDateSet  bool       `json:"-"`
	Recurrence  *string    `json:"recurrence"`
}

func (u *TodoUpdate) UnmarshalJSON(data []byte) error {
	type alias TodoUpdate
	var parsed alias
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, parsed.DueDateSet = keys["due_date"]

	*u = TodoUpdate(parsed)
	return nil
}

func (t *Todo) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

func (t *Todo) FromJSON(data []byte) error {
	return json.Unmarshal(data, t)
}
