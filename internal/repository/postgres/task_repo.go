package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
)

const (
	taskColumns = `id, user_id, category_id, title, description, is_completed, due_date, priority, status, created_at, updated_at`

	qTaskInsert = `
INSERT INTO tasks (user_id, category_id, title, description, is_completed, due_date, priority, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	qTaskList   = `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1 ORDER BY id`
	qTaskGet    = `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1 AND user_id=$2`
	qTaskUpdate = `
UPDATE tasks
SET category_id=$3, title=$4, description=$5, is_completed=$6, due_date=$7, priority=$8, status=$9, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING updated_at`
	qTaskDelete = `DELETE FROM tasks WHERE id=$1 AND user_id=$2`

	qSubtaskInsert = `
INSERT INTO subtasks (task_id, title, is_completed)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	qSubtaskDeleteAll = `DELETE FROM subtasks WHERE task_id=$1`
	qSubtasksFor      = `
SELECT id, task_id, title, is_completed, created_at, updated_at
FROM subtasks WHERE task_id = ANY($1) ORDER BY id`
	qCategoriesByIDs = `
SELECT id, user_id, name, description, color, created_at, updated_at
FROM categories WHERE user_id=$1 AND id = ANY($2)`
)

// TaskRepo implements TaskRepository using PostgreSQL.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

// Create inserts a task row followed by its subtasks.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, qTaskInsert,
			t.UserID, t.CategoryID, t.Title, t.Description, t.IsCompleted, t.DueDate,
			string(t.Priority), string(t.Status),
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return err
		}
		return insertSubtasks(ctx, tx, t)
	})
}

// List returns every task of the user with relations loaded.
func (r *TaskRepo) List(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := r.db.Pool.Query(ctx, qTaskList, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.load(ctx, userID, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single task of the user.
func (r *TaskRepo) Get(ctx context.Context, userID, id int64) (*model.Task, error) {
	t, err := scanTask(r.db.Pool.QueryRow(ctx, qTaskGet, id, userID))
	if err != nil {
		return nil, notFound(err, "task")
	}
	one := []model.Task{t}
	if err := r.load(ctx, userID, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Update rewrites the task's fields and optionally its whole subtask list.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task, replaceSubtasks bool) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, qTaskUpdate,
			t.ID, t.UserID, t.CategoryID, t.Title, t.Description, t.IsCompleted, t.DueDate,
			string(t.Priority), string(t.Status),
		).Scan(&t.UpdatedAt)
		if err != nil {
			return notFound(err, "task")
		}
		if !replaceSubtasks {
			return nil
		}
		if _, err := tx.Exec(ctx, qSubtaskDeleteAll, t.ID); err != nil {
			return err
		}
		return insertSubtasks(ctx, tx, t)
	})
}

// Delete removes a task of the user.
func (r *TaskRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, qTaskDelete, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func insertSubtasks(ctx context.Context, q querier, t *model.Task) error {
	for i := range t.Subtasks {
		s := &t.Subtasks[i]
		s.TaskID = t.ID
		if err := q.QueryRow(ctx, qSubtaskInsert, t.ID, s.Title, s.IsCompleted).
			Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return fmt.Errorf("subtask[%d]: %w", i, err)
		}
	}
	return nil
}

// load fills Subtasks and Category of every task with one query per relation.
func (r *TaskRepo) load(ctx context.Context, userID int64, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(tasks))
	byID := make(map[int64]*model.Task, len(tasks))
	var catIDs []int64
	seen := map[int64]bool{}
	for i := range tasks {
		t := &tasks[i]
		t.Subtasks = []model.Subtask{}
		ids = append(ids, t.ID)
		byID[t.ID] = t
		if t.CategoryID != nil && !seen[*t.CategoryID] {
			seen[*t.CategoryID] = true
			catIDs = append(catIDs, *t.CategoryID)
		}
	}

	rows, err := r.db.Pool.Query(ctx, qSubtasksFor, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var s model.Subtask
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Title, &s.IsCompleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
			rows.Close()
			return err
		}
		if t, ok := byID[s.TaskID]; ok {
			t.Subtasks = append(t.Subtasks, s)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(catIDs) == 0 {
		return nil
	}
	rows, err = r.db.Pool.Query(ctx, qCategoriesByIDs, userID, catIDs)
	if err != nil {
		return err
	}
	defer rows.Close()
	cats := make(map[int64]*model.Category, len(catIDs))
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return err
		}
		cats[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range tasks {
		if id := tasks[i].CategoryID; id != nil {
			tasks[i].Category = cats[*id]
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var (
		t                model.Task
		priority, status string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Title, &t.Description, &t.IsCompleted,
		&t.DueDate, &priority, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Priority = model.TaskPriority(priority)
	t.Status = model.TaskStatus(status)
	return t, nil
}
