package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
)

const (
	noteColumns = `id, user_id, title, content, created_at, updated_at`

	qNoteInsert = `
INSERT INTO notes (user_id, title, content)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	qNoteList   = `SELECT ` + noteColumns + ` FROM notes WHERE user_id=$1 ORDER BY id`
	qNoteGet    = `SELECT ` + noteColumns + ` FROM notes WHERE id=$1 AND user_id=$2`
	qNoteUpdate = `
UPDATE notes
SET title=$3, content=$4, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING updated_at`
	qNoteDelete = `DELETE FROM notes WHERE id=$1 AND user_id=$2`
)

// NoteRepo implements NoteRepository using PostgreSQL.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

// Create inserts a note.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	return r.db.Pool.QueryRow(ctx, qNoteInsert, n.UserID, n.Title, n.Content).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

// List returns the user's notes ordered by id.
func (r *NoteRepo) List(ctx context.Context, userID int64) ([]model.Note, error) {
	rows, err := r.db.Pool.Query(ctx, qNoteList, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Get returns one note of the user.
func (r *NoteRepo) Get(ctx context.Context, userID, id int64) (*model.Note, error) {
	n, err := scanNote(r.db.Pool.QueryRow(ctx, qNoteGet, id, userID))
	if err != nil {
		return nil, notFound(err, "note")
	}
	return &n, nil
}

// Update writes title and content.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note) error {
	err := r.db.Pool.QueryRow(ctx, qNoteUpdate, n.ID, n.UserID, n.Title, n.Content).Scan(&n.UpdatedAt)
	return notFound(err, "note")
}

// Delete removes a note of the user.
func (r *NoteRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, qNoteDelete, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func scanNote(row scanner) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}
