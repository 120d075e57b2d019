// Package token mints and verifies HS256 bearer tokens carrying the user identity.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/taskhub/internal/errs"
)

// Claims is the payload of an access token.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID decodes the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject", errs.ErrInvalidToken)
	}
	return id, nil
}

// Issued describes a freshly minted token.
type Issued struct {
	Token     string
	TokenID   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs and verifies tokens with a process-wide secret.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithClock replaces the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer constructs an Issuer for the given HMAC key and token lifetime.
func NewIssuer(key []byte, ttl time.Duration, opts ...Option) *Issuer {
	i := &Issuer{key: key, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue mints a token for the user that expires TTL from now.
func (i *Issuer) Issue(userID int64, email string) (Issued, error) {
	if len(i.key) == 0 {
		return Issued{}, errors.New("token: empty signing key")
	}
	jti, err := uuid.NewV4()
	if err != nil {
		return Issued{}, err
	}
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return Issued{}, err
	}
	// NumericDate drops sub-second precision; report what is actually inside the token.
	return Issued{
		Token:     signed,
		TokenID:   jti,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks signature, algorithm and expiry and returns the decoded claims.
// Tampered or malformed tokens yield errs.ErrInvalidToken, elapsed ones errs.ErrTokenExpired.
func (i *Issuer) Verify(tok string) (*Claims, error) {
	if tok == "" {
		return nil, fmt.Errorf("%w: empty", errs.ErrInvalidToken)
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		// jwt reports expiry only once the signature has verified.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, errs.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, errs.ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return &claims, nil
}
