package auth

import (
	"errors"
	"testing"
	"time"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
)

func TestSessionRoundTrip(t *testing.T) {
	svc, err := NewSessionService([]byte("session-key"), time.Minute)
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	u := &model.User{
		ID:    "u42",
		Roles: []model.Role{{ID: "r1", Name: "admin"}, {ID: "r2", Name: "user"}},
	}

	token, exp, err := svc.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "u42" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" || claims.Roles[1] != "user" {
		t.Fatalf("roles not preserved: %v", claims.Roles)
	}
}

func TestSessionExpiryRejected(t *testing.T) {
	svc, err := NewSessionService([]byte("session-key"), time.Minute)
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return past }

	token, _, err := svc.Issue(&model.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.Parse(token); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired session, got %v", err)
	}
}

func TestSessionWrongKeyRejected(t *testing.T) {
	a, _ := NewSessionService([]byte("key-a"), time.Minute)
	b, _ := NewSessionService([]byte("key-b"), time.Minute)

	token, _, err := a.Issue(&model.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Parse(token); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign signature, got %v", err)
	}
	if _, err := a.Parse("garbage"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for garbage token, got %v", err)
	}
}
