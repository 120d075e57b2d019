package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/limiter"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/repository"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	nextID  int64

	createErr error
	getErr    error
	existsErr error
	// hideExisting makes ExistsByEmail lie, simulating a racing registration.
	hideExisting bool
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cpy := *u
	f.byEmail[u.Email] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.hideExisting {
		return false, nil
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type fakeTokens struct {
	saved     []model.AccessToken
	createErr error
}

var _ repository.TokenRepository = (*fakeTokens)(nil)

func (f *fakeTokens) Create(_ context.Context, t *model.AccessToken) error {
	if f.createErr != nil {
		return f.createErr
	}
	t.ID = int64(len(f.saved) + 1)
	t.CreatedAt = time.Now()
	f.saved = append(f.saved, *t)
	return nil
}

type fakeLimiter struct {
	allowOK   bool
	allowWait time.Duration
	allowErr  error

	failBlocked bool
	failWait    time.Duration
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, l.allowWait, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, l.failWait, l.failErr
}

type fakeCategories struct {
	byID   map[int64]model.Category
	nextID int64
}

var _ repository.CategoryRepository = (*fakeCategories)(nil)

func newFakeCategories() *fakeCategories { return &fakeCategories{byID: map[int64]model.Category{}} }

func (f *fakeCategories) Create(_ context.Context, c *model.Category) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCategories) List(_ context.Context, userID int64) ([]model.Category, error) {
	out := []model.Category{}
	for _, c := range f.byID {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategories) Get(_ context.Context, userID, id int64) (*model.Category, error) {
	c, ok := f.byID[id]
	if !ok || c.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCategories) Update(_ context.Context, c *model.Category) error {
	old, ok := f.byID[c.ID]
	if !ok || old.UserID != c.UserID {
		return errs.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, userID, id int64) error {
	c, ok := f.byID[id]
	if !ok || c.UserID != userID {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeTasks keeps tasks in memory and resolves categories through cats.
type fakeTasks struct {
	byID      map[int64]model.Task
	nextID    int64
	nextSubID int64
	cats      *fakeCategories

	updates  int
	replaced int
}

var _ repository.TaskRepository = (*fakeTasks)(nil)

func newFakeTasks(cats *fakeCategories) *fakeTasks {
	return &fakeTasks{byID: map[int64]model.Task{}, cats: cats}
}

func (f *fakeTasks) stampSubtasks(t *model.Task) {
	subs := make([]model.Subtask, len(t.Subtasks))
	for i, s := range t.Subtasks {
		f.nextSubID++
		s.ID = f.nextSubID
		s.TaskID = t.ID
		subs[i] = s
	}
	t.Subtasks = subs
}

func (f *fakeTasks) Create(_ context.Context, t *model.Task) error {
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.stampSubtasks(t)
	f.byID[t.ID] = *t
	return nil
}

func (f *fakeTasks) loaded(t model.Task) model.Task {
	t.Subtasks = append([]model.Subtask{}, t.Subtasks...)
	t.Category = nil
	if t.CategoryID != nil {
		if c, ok := f.cats.byID[*t.CategoryID]; ok && c.UserID == t.UserID {
			t.Category = &c
		}
	}
	return t
}

func (f *fakeTasks) List(_ context.Context, userID int64) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, f.loaded(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTasks) Get(_ context.Context, userID, id int64) (*model.Task, error) {
	t, ok := f.byID[id]
	if !ok || t.UserID != userID {
		return nil, errs.ErrNotFound
	}
	l := f.loaded(t)
	return &l, nil
}

func (f *fakeTasks) Update(_ context.Context, t *model.Task, replaceSubtasks bool) error {
	old, ok := f.byID[t.ID]
	if !ok || old.UserID != t.UserID {
		return errs.ErrNotFound
	}
	f.updates++
	upd := *t
	if replaceSubtasks {
		f.replaced++
		f.stampSubtasks(&upd)
	} else {
		upd.Subtasks = old.Subtasks
	}
	upd.UpdatedAt = time.Now()
	f.byID[t.ID] = upd
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, userID, id int64) error {
	t, ok := f.byID[id]
	if !ok || t.UserID != userID {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeNotes struct {
	byID   map[int64]model.Note
	nextID int64
}

var _ repository.NoteRepository = (*fakeNotes)(nil)

func newFakeNotes() *fakeNotes { return &fakeNotes{byID: map[int64]model.Note{}} }

func (f *fakeNotes) Create(_ context.Context, n *model.Note) error {
	f.nextID++
	n.ID = f.nextID
	f.byID[n.ID] = *n
	return nil
}

func (f *fakeNotes) List(_ context.Context, userID int64) ([]model.Note, error) {
	out := []model.Note{}
	for _, n := range f.byID {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeNotes) Get(_ context.Context, userID, id int64) (*model.Note, error) {
	n, ok := f.byID[id]
	if !ok || n.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return &n, nil
}

func (f *fakeNotes) Update(_ context.Context, n *model.Note) error {
	old, ok := f.byID[n.ID]
	if !ok || old.UserID != n.UserID {
		return errs.ErrNotFound
	}
	f.byID[n.ID] = *n
	return nil
}

func (f *fakeNotes) Delete(_ context.Context, userID, id int64) error {
	n, ok := f.byID[id]
	if !ok || n.UserID != userID {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func ptr[T any](v T) *T { return &v }
