package service

import (
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Known reports whether s is one of the known statuses.
func (s Status) Known() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Category groups tasks by the kind of work.
type Category string

const (
	CategoryStudy    Category = "study"
	CategoryWork     Category = "work"
	CategoryPractice Category = "practice"
	CategoryPersonal Category = "personal"
)

// Known reports whether c is one of the known categories.
func (c Category) Known() bool {
	switch c {
	case CategoryStudy, CategoryWork, CategoryPractice, CategoryPersonal:
		return true
	}
	return false
}

// MinTitleLength is the shortest title accepted before a create is sent.
const MinTitleLength = 3

// ErrTitleTooShort is returned when a task title fails client-side validation.
var ErrTitleTooShort = errors.New("title must be at least 3 characters")

// User is the authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnmarshalJSON accepts both "id" and "_id" keys.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// Task represents a single task owned by the backend.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status,omitempty"`
	Category    Category  `json:"category,omitempty"`
	DueDate     string    `json:"dueDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts both "id" and "_id" keys.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Task(aux.plain)
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	return nil
}

// HasDueDate reports whether the task carries a due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != ""
}

// TaskInput holds the fields of a task to create.
// Empty optional fields are left out of the payload.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Category    Category `json:"category,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
}

// Validate applies the client-side checks done before a create is sent.
func (in TaskInput) Validate() error {
	if utf8.RuneCountInString(in.Title) < MinTitleLength {
		return ErrTitleTooShort
	}
	return nil
}

// TaskPatch holds a partial update. Nil fields are not sent.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Category    *Category `json:"category,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
}

// StatusPatch returns a patch that only changes the status.
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}
