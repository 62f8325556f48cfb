// Package store defines the credential-store contract the core depends on.
//
// Implementations must provide single-operation atomicity and enforce
// uniqueness constraints on usernames, emails, role names and tag names;
// those constraints are the arbiter for concurrent get-or-create races.
// Uniqueness violations surface as errs.ErrConflict, missing records as
// errs.ErrNotFound.
package store

import (
	"context"

	"notehub.org/internal/model"
)

// Store groups per-aggregate persistence operations.
type Store interface {
	Users() UserStore
	Roles() RoleStore
	Tags() TagStore
	Notes() NoteStore
}

// UserStore manages users and their role links.
type UserStore interface {
	// Create inserts a new user. Assigns an ID when empty.
	Create(ctx context.Context, u *model.User) error
	// Get returns the user with its role set loaded.
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Update persists name and status. Username is immutable; password
	// hashes change only through SetPasswordHash.
	Update(ctx context.Context, u *model.User) error
	SetPasswordHash(ctx context.Context, userID, hash string) error
	Delete(ctx context.Context, id string) error
	// AddRole links a role to a user. Linking an already-linked role is a no-op.
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
}

// RoleStore manages the shared role catalog.
type RoleStore interface {
	Create(ctx context.Context, r *model.Role) error
	Get(ctx context.Context, id string) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
}

// TagStore manages the shared tag catalog.
type TagStore interface {
	Create(ctx context.Context, t *model.Tag) error
	Get(ctx context.Context, id string) (*model.Tag, error)
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// NoteStore manages notes and their tag links.
type NoteStore interface {
	Create(ctx context.Context, n *model.Note) error
	// Get returns the note with its tag set loaded.
	Get(ctx context.Context, id string) (*model.Note, error)
	Update(ctx context.Context, n *model.Note) error
	Delete(ctx context.Context, id string) error
	// List returns all notes ordered by title.
	List(ctx context.Context) ([]model.Note, error)
	ListByTag(ctx context.Context, tagID string) ([]model.Note, error)
	// ReplaceTags atomically replaces the note's tag link set with exactly
	// tagIDs. On failure the previous link set must remain visible; a
	// partially-updated set must never be observable by other readers.
	ReplaceTags(ctx context.Context, noteID string, tagIDs []string) error
	// Tags returns the note's current tag set ordered by tag name.
	Tags(ctx context.Context, noteID string) ([]model.Tag, error)
}
