package model

import "time"

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginInput carries the fields of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SubtaskInput is a subtask as submitted on task create or update.
type SubtaskInput struct {
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
}

// TaskCreate holds the fields accepted when creating a task.
// Zero Priority/Status mean "use the default".
type TaskCreate struct {
	Title       string
	Description string
	IsCompleted bool
	DueDate     *time.Time
	Priority    TaskPriority
	Status      TaskStatus
	CategoryID  *int64
	Subtasks    []SubtaskInput
}

// TaskUpdate holds the fields accepted when patching a task. Nil means "leave as is".
// A non-nil Subtasks replaces the whole subtask list, an empty slice removes them all.
type TaskUpdate struct {
	Title       *string
	Description *string
	IsCompleted *bool
	DueDate     *time.Time
	Priority    *TaskPriority
	Status      *TaskStatus
	CategoryID  *int64
	Subtasks    *[]SubtaskInput
}

// CategoryCreate holds the fields accepted when creating a category.
type CategoryCreate struct {
	Name        string
	Description string
	Color       string
}

// CategoryUpdate holds the fields accepted when patching a category.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

// NoteCreate holds the fields accepted when creating a note.
type NoteCreate struct {
	Title   string
	Content string
}

// NoteUpdate holds the fields accepted when patching a note.
type NoteUpdate struct {
	Title   *string
	Content *string
}
