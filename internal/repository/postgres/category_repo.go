package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
)

const (
	categoryColumns = `id, user_id, name, description, color, created_at, updated_at`

	qCategoryInsert = `
INSERT INTO categories (user_id, name, description, color)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`
	qCategoryList   = `SELECT ` + categoryColumns + ` FROM categories WHERE user_id=$1 ORDER BY id`
	qCategoryGet    = `SELECT ` + categoryColumns + ` FROM categories WHERE id=$1 AND user_id=$2`
	qCategoryUpdate = `
UPDATE categories
SET name=$3, description=$4, color=$5, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING updated_at`
	qCategoryDelete = `DELETE FROM categories WHERE id=$1 AND user_id=$2`
)

// CategoryRepo implements CategoryRepository using PostgreSQL.
type CategoryRepo struct{ db *DB }

// NewCategoryRepo constructs a category repository.
func NewCategoryRepo(db *DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.Pool.QueryRow(ctx, qCategoryInsert, c.UserID, c.Name, c.Description, c.Color).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// List returns the user's categories ordered by id.
func (r *CategoryRepo) List(ctx context.Context, userID int64) ([]model.Category, error) {
	rows, err := r.db.Pool.Query(ctx, qCategoryList, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one category of the user.
func (r *CategoryRepo) Get(ctx context.Context, userID, id int64) (*model.Category, error) {
	c, err := scanCategory(r.db.Pool.QueryRow(ctx, qCategoryGet, id, userID))
	if err != nil {
		return nil, notFound(err, "category")
	}
	return &c, nil
}

// Update writes name, description and color.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	err := r.db.Pool.QueryRow(ctx, qCategoryUpdate, c.ID, c.UserID, c.Name, c.Description, c.Color).
		Scan(&c.UpdatedAt)
	return notFound(err, "category")
}

// Delete removes a category; tasks referencing it keep existing without one.
func (r *CategoryRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, qCategoryDelete, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func scanCategory(row scanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
