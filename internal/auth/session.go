package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
)

const sessionIssuer = "notehub"

// SessionClaims are the JWT claims carried by a login session token.
type SessionClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// SessionService issues short-lived HS256 session tokens for authenticated
// identities. Sessions are self-contained; there is no server-side session
// table.
type SessionService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionService constructs a SessionService signing with key and issuing
// tokens valid for ttl.
func NewSessionService(key []byte, ttl time.Duration) (*SessionService, error) {
	if len(key) == 0 {
		return nil, errors.New("auth: session signing key is required")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: session ttl must be positive")
	}
	return &SessionService{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue signs a session token for the user, embedding their role names.
func (s *SessionService) Issue(u *model.User) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := SessionClaims{
		Roles: u.RoleNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates the token signature, method, issuer and expiry. Any
// failure surfaces as the opaque errs.ErrUnauthorized.
func (s *SessionService) Parse(token string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errs.ErrUnauthorized
		}
		return s.key, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, errs.ErrUnauthorized
	}
	return claims, nil
}
