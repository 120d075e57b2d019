package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/repository"
)

// NoteService defines note operations scoped to the calling user.
type NoteService interface {
	Create(ctx context.Context, userID int64, in model.NoteCreate) (*model.Note, error)
	List(ctx context.Context, userID int64) ([]model.Note, error)
	Get(ctx context.Context, userID, id int64) (*model.Note, error)
	Update(ctx context.Context, userID, id int64, in model.NoteUpdate) (*model.Note, error)
	Delete(ctx context.Context, userID, id int64) error
}

type NoteServiceImpl struct {
	repo repository.NoteRepository
}

var _ NoteService = (*NoteServiceImpl)(nil)

// NewNoteService constructs NoteService.
func NewNoteService(repo repository.NoteRepository) *NoteServiceImpl {
	return &NoteServiceImpl{repo: repo}
}

func (s *NoteServiceImpl) Create(ctx context.Context, userID int64, in model.NoteCreate) (*model.Note, error) {
	n := &model.Note{UserID: userID, Title: strings.TrimSpace(in.Title), Content: in.Content}
	if n.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteServiceImpl) List(ctx context.Context, userID int64) ([]model.Note, error) {
	return s.repo.List(ctx, userID)
}

func (s *NoteServiceImpl) Get(ctx context.Context, userID, id int64) (*model.Note, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *NoteServiceImpl) Update(ctx context.Context, userID, id int64, in model.NoteUpdate) (*model.Note, error) {
	n, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", errs.ErrValidation)
		}
		n.Title = title
	}
	if in.Content != nil {
		n.Content = *in.Content
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}
