package auth

import (
	"errors"
	"strings"
	"testing"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
)

func TestSetPasswordProducesDistinctSaltedHashes(t *testing.T) {
	a := NewAuthenticator(4, nil)
	u := &model.User{ID: "u1"}

	if err := a.SetPassword(u, "secret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	first := u.PasswordHash
	if first == "" || first == "secret" {
		t.Fatalf("expected salted hash, got %q", first)
	}
	if !a.Verify(u, "secret") {
		t.Fatalf("expected first hash to verify")
	}

	if err := a.SetPassword(u, "secret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.PasswordHash == first {
		t.Fatalf("expected per-call salt to change the stored hash")
	}
	if !a.Verify(u, "secret") {
		t.Fatalf("expected second hash to verify")
	}
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	a := NewAuthenticator(4, nil)
	u := &model.User{ID: "u1"}
	if err := a.SetPassword(u, "secret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if a.Verify(u, "Secret") {
		t.Fatalf("wrong password accepted")
	}
	if a.Verify(u, "") {
		t.Fatalf("empty password accepted")
	}
}

func TestVerifyFailsClosedOnMalformedHash(t *testing.T) {
	a := NewAuthenticator(4, nil)
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$zz$corrupt", strings.Repeat("x", 60)} {
		u := &model.User{ID: "u1", PasswordHash: hash}
		if a.Verify(u, "secret") {
			t.Fatalf("malformed hash %q accepted", hash)
		}
	}
	if a.Verify(nil, "secret") {
		t.Fatalf("nil user accepted")
	}
}

func TestSetPasswordRejectsEmptyPlaintext(t *testing.T) {
	a := NewAuthenticator(4, nil)
	err := a.SetPassword(&model.User{}, "")
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
