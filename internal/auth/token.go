package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"notehub.org/internal/errs"
)

// Token purposes issued by this core.
const (
	PurposePasswordReset = "password-reset"
	PurposeEmailChange   = "email-change"
)

// DefaultResetMaxAge bounds the exposure window of a leaked reset link.
const DefaultResetMaxAge = 600 * time.Second

// ErrInvalidToken covers every capability-token rejection: bad signature,
// wrong purpose, expiry. Collapsing the reasons keeps verification free of
// validity oracles.
var ErrInvalidToken = errors.New("invalid token")

// allowed clock skew when validating issuance time
const issuedAtSkew = 5 * time.Second

// TokenService issues and verifies signed, purpose-scoped, time-limited
// tokens bound to a user identity. Tokens are stateless: nothing is stored
// server-side, and validity is entirely cryptographic.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// TokenOption configures TokenService.
type TokenOption func(*TokenService)

// WithTokenClock overrides the time source. Useful for tests.
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService around the process-wide signing
// secret. The secret is loaded once at startup; rotating it invalidates
// every outstanding token.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	s := &TokenService{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type tokenPayload struct {
	UserID   string `json:"uid"`
	Purpose  string `json:"pur"`
	IssuedAt int64  `json:"iat"`
}

// Issue serializes {userID, purpose, issuedAt} and signs it with a
// purpose-scoped key, so a token minted for one purpose can never be
// replayed for another. The result is a single URL-safe string.
func (s *TokenService) Issue(userID, purpose string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", errs.ErrInvalidInput)
	}
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return "", fmt.Errorf("%w: purpose is required", errs.ErrInvalidInput)
	}

	payload, err := json.Marshal(tokenPayload{
		UserID:   userID,
		Purpose:  purpose,
		IssuedAt: s.now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("encode token payload: %w", err)
	}
	segment := base64.RawURLEncoding.EncodeToString(payload)
	sig := s.sign(segment, purpose)
	return segment + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks signature, purpose binding and age, and returns the bound
// user id. Every rejection reason collapses into ErrInvalidToken. A
// non-positive maxAge falls back to DefaultResetMaxAge.
func (s *TokenService) Verify(token, purpose string, maxAge time.Duration) (string, error) {
	if maxAge <= 0 {
		maxAge = DefaultResetMaxAge
	}
	segment, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || segment == "" || sig == "" {
		return "", ErrInvalidToken
	}
	gotSig, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidToken
	}
	want := s.sign(segment, purpose)
	if subtle.ConstantTimeCompare(gotSig, want) != 1 {
		return "", ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return "", ErrInvalidToken
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", ErrInvalidToken
	}
	if payload.UserID == "" || payload.Purpose != purpose {
		return "", ErrInvalidToken
	}

	issued := time.Unix(payload.IssuedAt, 0)
	now := s.now()
	if issued.After(now.Add(issuedAtSkew)) {
		return "", ErrInvalidToken
	}
	if now.Sub(issued) > maxAge {
		return "", ErrInvalidToken
	}
	return payload.UserID, nil
}

// sign computes HMAC-SHA256 over data with a key derived from the secret
// and the purpose salt.
func (s *TokenService) sign(data, purpose string) []byte {
	mac := hmac.New(sha256.New, s.purposeKey(purpose))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// purposeKey derives a per-purpose signing key. Deriving via HMAC rather
// than concatenation keeps distinct purposes from ever colliding by prefix.
func (s *TokenService) purposeKey(purpose string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("purpose:" + purpose))
	return mac.Sum(nil)
}
