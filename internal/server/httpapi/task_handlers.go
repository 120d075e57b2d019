package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/validate"
)

type taskCreateRequest struct {
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	IsCompleted bool                 `json:"is_completed"`
	DueDate     *string              `json:"due_date"`
	Priority    model.TaskPriority   `json:"priority"`
	Status      model.TaskStatus     `json:"status"`
	CategoryID  *int64               `json:"category_id"`
	Subtasks    []model.SubtaskInput `json:"subtasks"`
}

type taskUpdateRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	IsCompleted *bool                 `json:"is_completed"`
	DueDate     *string               `json:"due_date"`
	Priority    *model.TaskPriority   `json:"priority"`
	Status      *model.TaskStatus     `json:"status"`
	CategoryID  *int64                `json:"category_id"`
	Subtasks    *[]model.SubtaskInput `json:"subtasks"`
}

// parseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: due_date %q is not a date", errs.ErrValidation, v)
}

// pathID parses a positive numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a valid id", errs.ErrValidation, name, raw)
	}
	return id, nil
}

// taskOwner resolves {user_id} against the caller. A path naming someone else
// answers like a missing resource.
func (s *Server) taskOwner(r *http.Request) (int64, error) {
	id, ok := IdentityFromCtx(r.Context())
	if !ok {
		return 0, errs.ErrUnauthorized
	}
	pathUser, err := pathID(r, "user_id")
	if err != nil {
		return 0, err
	}
	if pathUser != id.UserID {
		return 0, fmt.Errorf("user %d: %w", pathUser, errs.ErrNotFound)
	}
	return id.UserID, nil
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	uid, err := s.taskOwner(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	tasks, err := s.tasks.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	uid, err := s.taskOwner(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req taskCreateRequest
	if err := s.decode(r, validate.TaskCreate, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	in := model.TaskCreate{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
		DueDate:     due,
		Priority:    req.Priority,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
		Subtasks:    req.Subtasks,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	t, err := s.tasks.Create(r.Context(), uid, in)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	uid, err := s.taskOwner(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	t, err := s.tasks.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	uid, err := s.taskOwner(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req taskUpdateRequest
	if err := s.decode(r, validate.TaskUpdate, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	in := model.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		DueDate:     due,
		Priority:    req.Priority,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
		Subtasks:    req.Subtasks,
	}
	t, err := s.tasks.Update(r.Context(), uid, id, in)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	uid, err := s.taskOwner(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.tasks.Delete(r.Context(), uid, id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
