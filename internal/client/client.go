// Package client is a thin REST client for the Taskhub API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
)

// APIError is a non-2xx answer of the server. It unwraps to the matching errs sentinel.
type APIError struct {
	Status     int
	Message    string
	Details    []string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("http %d: %s", e.Status, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return errs.ErrValidation
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	case http.StatusTooManyRequests:
		return errs.ErrRateLimited
	}
	return nil
}

// IsUnauthorized reports whether the server rejected the credentials.
func IsUnauthorized(err error) bool { return errors.Is(err, errs.ErrUnauthorized) }

// Client talks to one API base URL with an optional bearer token.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithToken sets the bearer token sent with every request.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

// New parses baseURL and builds a Client.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 30 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// TaskFields is the body of task create and update. Nil fields are not sent.
// A non-nil Subtasks replaces the whole list on update.
type TaskFields struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	IsCompleted *bool                 `json:"is_completed,omitempty"`
	DueDate     *string               `json:"due_date,omitempty"`
	Priority    *string               `json:"priority,omitempty"`
	Status      *string               `json:"status,omitempty"`
	CategoryID  *int64                `json:"category_id,omitempty"`
	Subtasks    *[]model.SubtaskInput `json:"subtasks,omitempty"`
}

// CategoryFields is the body of category create and update.
type CategoryFields struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// NoteFields is the body of note create and update.
type NoteFields struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in model.RegisterInput) (model.Session, error) {
	var out model.Session
	return out, c.do(ctx, http.MethodPost, "/auth/register", in, &out)
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, in model.LoginInput) (model.Session, error) {
	var out model.Session
	return out, c.do(ctx, http.MethodPost, "/auth/login", in, &out)
}

// Logout asks the server to drop the token cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the account behind the token.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out model.User
	return out, c.do(ctx, http.MethodGet, "/users/me", nil, &out)
}

// Health checks server and database availability.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func taskPath(userID int64, id ...int64) string {
	p := "/users/" + strconv.FormatInt(userID, 10) + "/tasks"
	if len(id) > 0 {
		p += "/" + strconv.FormatInt(id[0], 10)
	}
	return p
}

// ListTasks returns the tasks of userID with subtasks and category.
func (c *Client) ListTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	var out []model.Task
	return out, c.do(ctx, http.MethodGet, taskPath(userID), nil, &out)
}

// CreateTask adds a task for userID.
func (c *Client) CreateTask(ctx context.Context, userID int64, in TaskFields) (model.Task, error) {
	var out model.Task
	return out, c.do(ctx, http.MethodPost, taskPath(userID), in, &out)
}

// GetTask fetches one task of userID.
func (c *Client) GetTask(ctx context.Context, userID, id int64) (model.Task, error) {
	var out model.Task
	return out, c.do(ctx, http.MethodGet, taskPath(userID, id), nil, &out)
}

// UpdateTask changes the given fields of a task. Unset fields keep their value.
func (c *Client) UpdateTask(ctx context.Context, userID, id int64, in TaskFields) (model.Task, error) {
	var out model.Task
	return out, c.do(ctx, http.MethodPatch, taskPath(userID, id), in, &out)
}

// DeleteTask removes a task together with its subtasks.
func (c *Client) DeleteTask(ctx context.Context, userID, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(userID, id), nil, nil)
}

// ListCategories returns the caller's categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	return out, c.do(ctx, http.MethodGet, "/categories", nil, &out)
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, in CategoryFields) (model.Category, error) {
	var out model.Category
	return out, c.do(ctx, http.MethodPost, "/categories", in, &out)
}

// UpdateCategory changes the given fields of a category.
func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryFields) (model.Category, error) {
	var out model.Category
	return out, c.do(ctx, http.MethodPatch, "/categories/"+strconv.FormatInt(id, 10), in, &out)
}

// DeleteCategory removes a category. Its tasks stay, uncategorized.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+strconv.FormatInt(id, 10), nil, nil)
}

// ListNotes returns the caller's notes.
func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var out []model.Note
	return out, c.do(ctx, http.MethodGet, "/notes", nil, &out)
}

// CreateNote adds a note.
func (c *Client) CreateNote(ctx context.Context, in NoteFields) (model.Note, error) {
	var out model.Note
	return out, c.do(ctx, http.MethodPost, "/notes", in, &out)
}

// UpdateNote changes the given fields of a note.
func (c *Client) UpdateNote(ctx context.Context, id int64, in NoteFields) (model.Note, error) {
	var out model.Note
	return out, c.do(ctx, http.MethodPatch, "/notes/"+strconv.FormatInt(id, 10), in, &out)
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+strconv.FormatInt(id, 10), nil, nil)
}

// do sends one request and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response, raw []byte) error {
	e := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		e.Message = body.Error
		e.Details = body.Details
	}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			e.RetryAfter = time.Duration(n) * time.Second
		}
	}
	return e
}
