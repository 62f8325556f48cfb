package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
	"notehub.org/internal/obs"
	"notehub.org/internal/store"
)

// Service wires the credential store, password authenticator, token and
// session services into the account flows: registration, login and
// password reset. Email delivery of reset links is the caller's concern.
type Service struct {
	store    store.Store
	authn    *Authenticator
	tokens   *TokenService
	sessions *SessionService
	gate     *RoleGate
	limiter  *LoginLimiter
	log      *zap.Logger

	resetMaxAge time.Duration
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithLoginLimiter enables login throttling.
func WithLoginLimiter(l *LoginLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithLogger overrides the default nop logger.
func WithLogger(log *zap.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithResetMaxAge overrides the reset-token validity window.
func WithResetMaxAge(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.resetMaxAge = d
		}
	}
}

// NewService constructs the account service.
func NewService(st store.Store, authn *Authenticator, tokens *TokenService, sessions *SessionService, opts ...ServiceOption) (*Service, error) {
	if st == nil || authn == nil || tokens == nil || sessions == nil {
		return nil, errors.New("auth: store, authenticator, tokens and sessions are required")
	}
	gate, err := NewRoleGate(st)
	if err != nil {
		return nil, err
	}
	s := &Service{
		store:       st,
		authn:       authn,
		tokens:      tokens,
		sessions:    sessions,
		gate:        gate,
		log:         zap.NewNop(),
		resetMaxAge: DefaultResetMaxAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Gate exposes the role gate for guarded operations.
func (s *Service) Gate() *RoleGate { return s.gate }

// Register creates an active user with a hashed password and the "user"
// role. Username and email collisions surface as errs.ErrConflict.
func (s *Service) Register(ctx context.Context, username, email, name, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", errs.ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", errs.ErrInvalidInput)
	}

	u := &model.User{
		Username: username,
		Email:    email,
		Name:     strings.TrimSpace(name),
		Status:   model.UserStatusActive,
	}
	if err := s.authn.SetPassword(u, password); err != nil {
		return nil, err
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, fmt.Errorf("%w: username or email already taken", errs.ErrConflict)
		}
		return nil, err
	}
	if err := s.gate.GrantRole(ctx, u.ID, model.RoleUser); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", username))
	return s.store.Users().Get(ctx, u.ID)
}

// Login authenticates the credentials and issues a session token. Unknown
// user, wrong password and disabled status all collapse into the opaque
// errs.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password, ip string) (string, *model.User, error) {
	if s.limiter != nil && !s.limiter.Allow(username, ip) {
		obs.Login(obs.LoginRateLimited)
		return "", nil, errs.ErrRateLimited
	}

	u, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return "", nil, err
		}
		obs.Login(obs.LoginRejected)
		return "", nil, errs.ErrUnauthorized
	}
	if u.Status != model.UserStatusActive || !s.authn.Verify(u, password) {
		obs.Login(obs.LoginRejected)
		return "", nil, errs.ErrUnauthorized
	}

	token, _, err := s.sessions.Issue(u)
	if err != nil {
		return "", nil, err
	}
	obs.Login(obs.LoginOK)
	return token, u, nil
}

// Authenticate resolves a session token back to its user. Used by boundary
// layers to establish the request identity.
func (s *Service) Authenticate(ctx context.Context, sessionToken string) (*model.User, error) {
	claims, err := s.sessions.Parse(sessionToken)
	if err != nil {
		return nil, err
	}
	u, err := s.store.Users().Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnauthorized
		}
		return nil, err
	}
	if u.Status != model.UserStatusActive {
		return nil, errs.ErrUnauthorized
	}
	return u, nil
}

// RequestPasswordReset issues a reset token for the account registered
// under email. Delivering the token (mail, SMS) is the boundary layer's
// responsibility.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.store.Users().GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", err
	}
	token, err := s.tokens.Issue(u.ID, PurposePasswordReset)
	if err != nil {
		return "", err
	}
	obs.TokenIssued(PurposePasswordReset)
	s.log.Info("password reset requested", zap.String("user_id", u.ID))
	return token, nil
}

// VerifyResetToken validates a password-reset token and returns the bound
// user id. The rejection is opaque.
func (s *Service) VerifyResetToken(token string) (string, error) {
	userID, err := s.tokens.Verify(token, PurposePasswordReset, s.resetMaxAge)
	if err != nil {
		obs.TokenVerifyFailed()
		return "", errs.ErrUnauthorized
	}
	return userID, nil
}

// ResetPassword verifies the reset token and stores a new password hash.
// Token rejections are opaque; the caller only learns that the reset was
// refused.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.VerifyResetToken(token)
	if err != nil {
		return err
	}
	u, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrUnauthorized
		}
		return err
	}
	if err := s.authn.SetPassword(u, newPassword); err != nil {
		return err
	}
	if err := s.store.Users().SetPasswordHash(ctx, u.ID, u.PasswordHash); err != nil {
		return err
	}
	s.log.Info("password reset completed", zap.String("user_id", u.ID))
	return nil
}
