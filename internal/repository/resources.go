package repository

import (
	"context"

	"github.com/and161185/taskhub/internal/model"
)

// TaskRepository stores tasks together with their subtasks.
// Every lookup is scoped to the owning user; foreign rows look absent.
type TaskRepository interface {
	// Create inserts the task and its subtasks in one transaction.
	Create(ctx context.Context, t *model.Task) error
	// List returns the user's tasks ordered by id with category and subtasks loaded.
	List(ctx context.Context, userID int64) ([]model.Task, error)
	// Get returns one task with category and subtasks loaded.
	Get(ctx context.Context, userID, id int64) (*model.Task, error)
	// Update writes the task's scalar fields. When replaceSubtasks is set the
	// stored subtasks are deleted and t.Subtasks inserted in the same transaction.
	Update(ctx context.Context, t *model.Task, replaceSubtasks bool) error
	// Delete removes the task; subtasks go with it.
	Delete(ctx context.Context, userID, id int64) error
}

// CategoryRepository stores categories owned by users.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	List(ctx context.Context, userID int64) ([]model.Category, error)
	Get(ctx context.Context, userID, id int64) (*model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, userID, id int64) error
}

// NoteRepository stores notes owned by users.
type NoteRepository interface {
	Create(ctx context.Context, n *model.Note) error
	List(ctx context.Context, userID int64) ([]model.Note, error)
	Get(ctx context.Context, userID, id int64) (*model.Note, error)
	Update(ctx context.Context, n *model.Note) error
	Delete(ctx context.Context, userID, id int64) error
}
