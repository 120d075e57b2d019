package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
)

const (
	qUserInsert = `
INSERT INTO users (email, password_hash, name)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	qUserByID = `
SELECT id, email, password_hash, name, created_at, updated_at
FROM users WHERE id=$1`
	qUserByEmail = `
SELECT id, email, password_hash, name, created_at, updated_at
FROM users WHERE email=$1`
	qUserExists = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	err := r.db.Pool.QueryRow(ctx, qUserInsert, u.Email, u.PasswordHash, u.Name).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %q: %w", u.Email, errs.ErrAlreadyExists)
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.scanOne(ctx, qUserByID, id)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(ctx, qUserByEmail, email)
}

// ExistsByEmail reports whether a user with the email is stored.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, qUserExists, email).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// TokenRepo implements TokenRepository using PostgreSQL.
type TokenRepo struct{ db *DB }

// NewTokenRepo constructs an access token repository.
func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

const qTokenInsert = `
INSERT INTO access_tokens (token_id, token, user_id, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`

// Create stores the token record.
func (r *TokenRepo) Create(ctx context.Context, t *model.AccessToken) error {
	return r.db.Pool.QueryRow(ctx, qTokenInsert, t.TokenID, t.Token, t.UserID, t.ExpiresAt).
		Scan(&t.ID, &t.CreatedAt)
}
