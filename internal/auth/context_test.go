package auth

import (
	"context"
	"testing"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), Identity{
		UserID: "u1",
		Roles:  []string{"user", "admin"},
	})

	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID != "u1" {
		t.Fatalf("identity not carried: %v %v", id, ok)
	}
	if !id.HasRole("admin") || id.HasRole("Admin") {
		t.Fatalf("role match must be exact: %v", id.Roles)
	}

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatalf("expected no identity on a bare context")
	}
	if _, ok := IdentityFromContext(ContextWithIdentity(context.Background(), Identity{})); ok {
		t.Fatalf("identity without a user id must not resolve")
	}
}
