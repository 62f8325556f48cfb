package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
	"notehub.org/internal/obs"
	"notehub.org/internal/store"
)

// RoleGate evaluates whether an identity's role set satisfies a required
// role. Roles are flat capability tags: matching is exact and
// case-sensitive, with no hierarchy between roles.
type RoleGate struct {
	store store.Store
}

// NewRoleGate constructs a RoleGate over the credential store.
func NewRoleGate(st store.Store) (*RoleGate, error) {
	if st == nil {
		return nil, errors.New("auth: store is required")
	}
	return &RoleGate{store: st}, nil
}

// Authorize reports whether the identity holds requiredRole.
func (g *RoleGate) Authorize(u *model.User, requiredRole string) bool {
	return u != nil && u.HasRole(requiredRole)
}

// EnsureRole is the enforcing variant of Authorize: it succeeds silently
// when authorized and otherwise returns errs.ErrAccessDenied for the
// boundary layer to translate. Guarded operations must call it before
// doing any work.
func (g *RoleGate) EnsureRole(u *model.User, requiredRole string) error {
	if g.Authorize(u, requiredRole) {
		return nil
	}
	obs.AccessDenied(requiredRole)
	return errs.ErrAccessDenied
}

// GrantRole links roleName to the user, creating the role on first use.
// Granting an already-held role is a no-op, never a duplicate link or an
// error.
func (g *RoleGate) GrantRole(ctx context.Context, userID, roleName string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", errs.ErrInvalidInput)
	}
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return fmt.Errorf("%w: role name is required", errs.ErrInvalidInput)
	}
	role, err := g.ensureRole(ctx, roleName)
	if err != nil {
		return err
	}
	return g.store.Users().AddRole(ctx, userID, role.ID)
}

// ensureRole resolves roleName to its canonical record, creating it when
// absent. The store's uniqueness constraint arbitrates concurrent creation:
// on conflict the now-existing record is re-fetched instead of erroring.
func (g *RoleGate) ensureRole(ctx context.Context, roleName string) (*model.Role, error) {
	roles := g.store.Roles()
	role, err := roles.GetByName(ctx, roleName)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	created := &model.Role{Name: roleName}
	err = roles.Create(ctx, created)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, errs.ErrConflict) {
		return roles.GetByName(ctx, roleName)
	}
	return nil, err
}
