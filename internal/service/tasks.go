package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/repository"
)

// TaskService defines task operations scoped to the calling user.
type TaskService interface {
	// Create stores a task with its subtasks and returns it with relations loaded.
	Create(ctx context.Context, userID int64, in model.TaskCreate) (*model.Task, error)
	// List returns all tasks of the user.
	List(ctx context.Context, userID int64) ([]model.Task, error)
	// Get returns one task of the user.
	Get(ctx context.Context, userID, id int64) (*model.Task, error)
	// Update merges provided fields; a provided subtask list replaces the old one.
	Update(ctx context.Context, userID, id int64, in model.TaskUpdate) (*model.Task, error)
	// Delete removes the task and its subtasks.
	Delete(ctx context.Context, userID, id int64) error
}

type TaskServiceImpl struct {
	tasks      repository.TaskRepository
	categories repository.CategoryRepository
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService constructs TaskService.
func NewTaskService(tasks repository.TaskRepository, categories repository.CategoryRepository) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, categories: categories}
}

// Create applies defaults (priority medium, status todo) and validates references.
func (s *TaskServiceImpl) Create(ctx context.Context, userID int64, in model.TaskCreate) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", errs.ErrValidation, in.Priority)
	}
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errs.ErrValidation, in.Status)
	}
	if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}
	subs, err := toSubtasks(in.Subtasks)
	if err != nil {
		return nil, err
	}

	t := &model.Task{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		IsCompleted: in.IsCompleted,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      in.Status,
		CategoryID:  in.CategoryID,
		Subtasks:    subs,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, userID, t.ID)
}

// List returns the user's tasks.
func (s *TaskServiceImpl) List(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.tasks.List(ctx, userID)
}

// Get returns the task or errs.ErrNotFound when it is missing or foreign.
func (s *TaskServiceImpl) Get(ctx context.Context, userID, id int64) (*model.Task, error) {
	return s.tasks.Get(ctx, userID, id)
}

// Update loads the task within the user's scope, merges the patch and persists it.
func (s *TaskServiceImpl) Update(ctx context.Context, userID, id int64, in model.TaskUpdate) (*model.Task, error) {
	t, err := s.tasks.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", errs.ErrValidation)
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.IsCompleted != nil {
		t.IsCompleted = *in.IsCompleted
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", errs.ErrValidation, *in.Priority)
		}
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", errs.ErrValidation, *in.Status)
		}
		t.Status = *in.Status
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
			return nil, err
		}
		t.CategoryID = in.CategoryID
	}
	replace := in.Subtasks != nil
	if replace {
		subs, err := toSubtasks(*in.Subtasks)
		if err != nil {
			return nil, err
		}
		t.Subtasks = subs
	}
	if err := s.tasks.Update(ctx, t, replace); err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, userID, id)
}

// Delete removes the task within the user's scope.
func (s *TaskServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	return s.tasks.Delete(ctx, userID, id)
}

// checkCategory rejects references to categories the user does not own.
func (s *TaskServiceImpl) checkCategory(ctx context.Context, userID int64, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.categories.Get(ctx, userID, *id)
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%w: category %d does not exist", errs.ErrValidation, *id)
	}
	return err
}

func toSubtasks(in []model.SubtaskInput) ([]model.Subtask, error) {
	out := make([]model.Subtask, 0, len(in))
	for i, s := range in {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: subtask[%d] title is required", errs.ErrValidation, i)
		}
		out = append(out, model.Subtask{Title: title, IsCompleted: s.IsCompleted})
	}
	return out, nil
}
