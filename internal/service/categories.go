package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/repository"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CategoryService defines category operations scoped to the calling user.
type CategoryService interface {
	Create(ctx context.Context, userID int64, in model.CategoryCreate) (*model.Category, error)
	List(ctx context.Context, userID int64) ([]model.Category, error)
	Get(ctx context.Context, userID, id int64) (*model.Category, error)
	Update(ctx context.Context, userID, id int64, in model.CategoryUpdate) (*model.Category, error)
	Delete(ctx context.Context, userID, id int64) error
}

type CategoryServiceImpl struct {
	repo repository.CategoryRepository
}

var _ CategoryService = (*CategoryServiceImpl)(nil)

// NewCategoryService constructs CategoryService.
func NewCategoryService(repo repository.CategoryRepository) *CategoryServiceImpl {
	return &CategoryServiceImpl{repo: repo}
}

// Create validates name and color and stores the category.
func (s *CategoryServiceImpl) Create(ctx context.Context, userID int64, in model.CategoryCreate) (*model.Category, error) {
	c := &model.Category{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Color:       strings.TrimSpace(in.Color),
	}
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryServiceImpl) List(ctx context.Context, userID int64) ([]model.Category, error) {
	return s.repo.List(ctx, userID)
}

func (s *CategoryServiceImpl) Get(ctx context.Context, userID, id int64) (*model.Category, error) {
	return s.repo.Get(ctx, userID, id)
}

// Update merges the provided fields into the stored category.
func (s *CategoryServiceImpl) Update(ctx context.Context, userID, id int64, in model.CategoryUpdate) (*model.Category, error) {
	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Color != nil {
		c.Color = strings.TrimSpace(*in.Color)
	}
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

func validateCategory(c *model.Category) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	if c.Color != "" && !hexColor.MatchString(c.Color) {
		return fmt.Errorf("%w: color %q is not a hex color", errs.ErrValidation, c.Color)
	}
	return nil
}
