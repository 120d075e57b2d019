// Package service contains application services for accounts and owned resources.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/taskhub/internal/crypto"
	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/limiter"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/repository"
	"github.com/and161185/taskhub/internal/token"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 6

// AuthService defines registration, login and token checks.
type AuthService interface {
	// Register creates an account and returns it with a fresh access token.
	Register(ctx context.Context, in model.RegisterInput) (model.Session, error)
	// Login applies rate limiting, checks credentials and mints an access token.
	Login(ctx context.Context, in model.LoginInput, ip string) (model.Session, error)
	// Authenticate verifies a bearer token and returns the caller identity.
	Authenticate(ctx context.Context, tok string) (model.Identity, error)
	// Profile returns the account of the authenticated user.
	Profile(ctx context.Context, userID int64) (model.User, error)
	// TokenTTL is the lifetime of minted tokens.
	TokenTTL() time.Duration
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	issuer *token.Issuer
	lim    limiter.Limiter
	log    *zap.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthOption customizes AuthServiceImpl.
type AuthOption func(*AuthServiceImpl)

// WithLogger sets the logger used for failures that do not reach the caller.
func WithLogger(l *zap.Logger) AuthOption {
	return func(s *AuthServiceImpl) {
		if l != nil {
			s.log = l
		}
	}
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, issuer *token.Issuer, lim limiter.Limiter, opts ...AuthOption) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Nop{}
	}
	s := &AuthServiceImpl{users: users, tokens: tokens, issuer: issuer, lim: lim, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates input, rejects taken emails and stores a bcrypt hash.
func (s *AuthServiceImpl) Register(ctx context.Context, in model.RegisterInput) (model.Session, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if err := validateRegistration(email, in.Password, name); err != nil {
		return model.Session{}, err
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Session{}, err
	}
	if taken {
		return model.Session{}, fmt.Errorf("email %q: %w", email, errs.ErrAlreadyExists)
	}

	hash, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return model.Session{}, err
	}
	u := &model.User{Email: email, PasswordHash: hash, Name: name}
	// The unique index catches a concurrent registration that passed the check above.
	if err := s.users.Create(ctx, u); err != nil {
		return model.Session{}, err
	}

	issued, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{User: *u, AccessToken: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

// Login authenticates with rate limiting by (email, ip) and records the issued token.
// An unknown email and a wrong password produce the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, in model.LoginInput, ip string) (model.Session, error) {
	email := NormalizeEmail(in.Email)
	ipHash := limiter.HashIP(ip)

	allowed, wait, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Session{}, err
	}
	if !allowed {
		return model.Session{}, &errs.RetryAfterError{After: wait}
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		pkgcrypto.BurnCompare(in.Password)
		return model.Session{}, s.fail(ctx, email, ipHash)
	case err != nil:
		return model.Session{}, err
	case !pkgcrypto.VerifyPassword(in.Password, u.PasswordHash):
		return model.Session{}, s.fail(ctx, email, ipHash)
	}

	// Success resets counters (best-effort).
	if err := s.lim.Success(ctx, email, ipHash); err != nil {
		s.log.Warn("login limiter: reset failed", zap.Error(err))
	}

	issued, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return model.Session{}, err
	}
	rec := &model.AccessToken{
		TokenID:   issued.TokenID,
		Token:     issued.Token,
		UserID:    u.ID,
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return model.Session{}, fmt.Errorf("store access token: %w", err)
	}
	return model.Session{User: *u, AccessToken: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

// fail records a failed attempt and picks the error to show the caller.
// A limiter write error is logged and the caller still gets ErrUnauthorized.
func (s *AuthServiceImpl) fail(ctx context.Context, email string, ipHash []byte) error {
	blocked, wait, err := s.lim.Failure(ctx, email, ipHash)
	if err != nil {
		s.log.Warn("login limiter: record failure failed", zap.Error(err))
		return errs.ErrUnauthorized
	}
	if blocked {
		return &errs.RetryAfterError{After: wait}
	}
	return errs.ErrUnauthorized
}

// Authenticate verifies the token and extracts the identity it carries.
func (s *AuthServiceImpl) Authenticate(_ context.Context, tok string) (model.Identity, error) {
	claims, err := s.issuer.Verify(tok)
	if err != nil {
		return model.Identity{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{UserID: id, Email: claims.Email}, nil
}

// Profile loads the caller's account.
func (s *AuthServiceImpl) Profile(ctx context.Context, userID int64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// TokenTTL returns the access token lifetime.
func (s *AuthServiceImpl) TokenTTL() time.Duration { return s.issuer.TTL() }

func validateRegistration(email, password, name string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", errs.ErrValidation)
	}
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		return fmt.Errorf("%w: email %q is not valid", errs.ErrValidation, email)
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, MinPasswordLen)
	}
	if len(password) > pkgcrypto.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", errs.ErrValidation, pkgcrypto.MaxPasswordBytes)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	return nil
}
