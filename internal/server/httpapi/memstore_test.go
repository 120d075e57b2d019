package httpapi

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
)

// In-memory repositories backing the real services in handler tests.

type memUsers struct {
	mu   sync.Mutex
	rows []model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	u.ID = int64(len(m.rows) + 1)
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	m.rows = append(m.rows, *u)
	return nil
}

func (m *memUsers) find(match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if match(r) {
			c := r
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Email == email })
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

type memTokens struct{ n int }

func (m *memTokens) Create(_ context.Context, t *model.AccessToken) error {
	m.n++
	t.ID = int64(m.n)
	return nil
}

type memTasks struct {
	mu   sync.Mutex
	rows map[int64]model.Task
	seq  int64
	cats *memCategories
}

func (m *memTasks) Create(_ context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t.ID = m.seq
	for i := range t.Subtasks {
		m.seq++
		t.Subtasks[i].ID, t.Subtasks[i].TaskID = m.seq, t.ID
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTasks) withRelations(t model.Task) model.Task {
	t.Subtasks = append([]model.Subtask{}, t.Subtasks...)
	t.Category = nil
	if t.CategoryID != nil {
		if c, err := m.cats.Get(context.Background(), t.UserID, *t.CategoryID); err == nil {
			t.Category = c
		}
	}
	return t
}

func (m *memTasks) List(_ context.Context, userID int64) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.rows {
		if t.UserID == userID {
			out = append(out, m.withRelations(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTasks) Get(_ context.Context, userID, id int64) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return nil, errs.ErrNotFound
	}
	l := m.withRelations(t)
	return &l, nil
}

func (m *memTasks) Update(_ context.Context, t *model.Task, replace bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.rows[t.ID]
	if !ok || old.UserID != t.UserID {
		return errs.ErrNotFound
	}
	upd := *t
	if replace {
		for i := range upd.Subtasks {
			m.seq++
			upd.Subtasks[i].ID, upd.Subtasks[i].TaskID = m.seq, t.ID
		}
	} else {
		upd.Subtasks = old.Subtasks
	}
	m.rows[t.ID] = upd
	return nil
}

func (m *memTasks) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return errs.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memCategories struct {
	mu   sync.Mutex
	rows map[int64]model.Category
	seq  int64
}

func (m *memCategories) Create(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.ID = m.seq
	m.rows[c.ID] = *c
	return nil
}

func (m *memCategories) List(_ context.Context, userID int64) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Category{}
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCategories) Get(_ context.Context, userID, id int64) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

func (m *memCategories) Update(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.rows[c.ID]; !ok || old.UserID != c.UserID {
		return errs.ErrNotFound
	}
	m.rows[c.ID] = *c
	return nil
}

func (m *memCategories) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.rows[id]; !ok || c.UserID != userID {
		return errs.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memNotes struct {
	mu   sync.Mutex
	rows map[int64]model.Note
	seq  int64
}

func (m *memNotes) Create(_ context.Context, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	n.ID = m.seq
	m.rows[n.ID] = *n
	return nil
}

func (m *memNotes) List(_ context.Context, userID int64) ([]model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Note{}
	for _, n := range m.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memNotes) Get(_ context.Context, userID, id int64) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok || n.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return &n, nil
}

func (m *memNotes) Update(_ context.Context, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.rows[n.ID]; !ok || old.UserID != n.UserID {
		return errs.ErrNotFound
	}
	m.rows[n.ID] = *n
	return nil
}

func (m *memNotes) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.rows[id]; !ok || n.UserID != userID {
		return errs.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
