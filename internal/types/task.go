package types

import (
	"encoding/json"
	"time"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task belongs to exactly one user, referenced by Owner.
type Task struct {
	ID          string       `json:"id"`
	Owner       string       `json:"owner"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Completed   bool         `json:"completed"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type CreateTaskParams struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	Completed   bool         `json:"completed"`
}

// OptionalTime tells an absent JSON field apart from an explicit null.
// Set is true whenever the field was present; Value is nil for null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// SetTime returns a present, non-null OptionalTime.
func SetTime(t time.Time) OptionalTime {
	return OptionalTime{Set: true, Value: &t}
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

func (o OptionalTime) IsZero() bool {
	return !o.Set
}

// UpdateTaskParams uses pointers so that only provided fields are changed.
// A dueDate of null clears the due date.
type UpdateTaskParams struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     OptionalTime  `json:"dueDate,omitzero"`
	Completed   *bool         `json:"completed,omitempty"`
}

func (p UpdateTaskParams) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && !p.DueDate.Set && p.Completed == nil
}

type TaskResponse struct {
	Success bool `json:"success"`
	Task    Task `json:"task"`
}

type TaskListResponse struct {
	Success bool   `json:"success"`
	Tasks   []Task `json:"tasks"`
}
