// Package model declares the persisted records of the note-taking core.
package model

import "time"

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Well-known role names. Roles are flat capability tags; there is no
// hierarchy between them.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an identity. Username is unique and immutable after creation;
// PasswordHash is never empty for a persisted user and never holds plaintext.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Status       string    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Roles holds the user's resolved role set. Loaded by the store on reads;
	// ignored on writes (role links change through dedicated link operations).
	Roles []Role `json:"roles,omitempty"`
}

// HasRole reports whether the user's role set contains name. Matching is
// exact and case-sensitive.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names in load order.
func (u *User) RoleNames() []string {
	if len(u.Roles) == 0 {
		return nil
	}
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// Role is a named capability marker, unique by name.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag is a named label, unique by trimmed name. Tags are created lazily on
// first reference and never deleted just because no note references them.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a titled entry owning a set of tag associations. The set never
// contains the same tag twice, regardless of the caller's input.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Tags holds the note's resolved tag set. Loaded by the store on reads;
	// changed only through ReplaceTags.
	Tags []Tag `json:"tags,omitempty"`
}
