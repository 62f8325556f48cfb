// Package memory provides an in-memory store implementation with the same
// uniqueness and atomicity semantics as the PostgreSQL store. It backs
// service tests, including races between concurrent get-or-create callers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"notehub.org/internal/errs"
	"notehub.org/internal/ids"
	"notehub.org/internal/model"
	"notehub.org/internal/store"
)

// Store keeps all records behind one mutex; every exported operation is
// individually atomic, matching the contract in package store.
type Store struct {
	mu sync.Mutex

	users       map[string]model.User
	byUsername  map[string]string
	byEmail     map[string]string
	roles       map[string]model.Role
	rolesByName map[string]string
	tags        map[string]model.Tag
	tagsByName  map[string]string
	notes       map[string]model.Note
	userRoles   map[string]map[string]struct{}
	noteTags    map[string]map[string]struct{}

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:       make(map[string]model.User),
		byUsername:  make(map[string]string),
		byEmail:     make(map[string]string),
		roles:       make(map[string]model.Role),
		rolesByName: make(map[string]string),
		tags:        make(map[string]model.Tag),
		tagsByName:  make(map[string]string),
		notes:       make(map[string]model.Note),
		userRoles:   make(map[string]map[string]struct{}),
		noteTags:    make(map[string]map[string]struct{}),
		now:         time.Now,
	}
}

func (s *Store) Users() store.UserStore { return (*userStore)(s) }
func (s *Store) Roles() store.RoleStore { return (*roleStore)(s) }
func (s *Store) Tags() store.TagStore   { return (*tagStore)(s) }
func (s *Store) Notes() store.NoteStore { return (*noteStore)(s) }

// Users ---------------------------------------------------------------------

type userStore Store

func (s *userStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[u.Username]; taken {
		return errs.ErrConflict
	}
	// The email column is not null unique, so the empty string is a value
	// like any other and collides too.
	if _, taken := s.byEmail[u.Email]; taken {
		return errs.ErrConflict
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	rec := *u
	rec.Roles = nil
	s.users[u.ID] = rec
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *userStore) Get(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *userStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return s.getLocked(id)
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return s.getLocked(id)
}

func (s *userStore) getLocked(id string) (*model.User, error) {
	rec, ok := s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	u := rec
	u.Roles = s.rolesOfLocked(id)
	return &u, nil
}

func (s *userStore) rolesOfLocked(userID string) []model.Role {
	var roles []model.Role
	for roleID := range s.userRoles[userID] {
		if r, ok := s.roles[roleID]; ok {
			roles = append(roles, r)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles
}

func (s *userStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *userStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[u.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if u.Email != rec.Email {
		if _, taken := s.byEmail[u.Email]; taken {
			return errs.ErrConflict
		}
		delete(s.byEmail, rec.Email)
		s.byEmail[u.Email] = u.ID
	}
	rec.Email = u.Email
	rec.Name = u.Name
	rec.Status = u.Status
	rec.UpdatedAt = s.now()
	s.users[u.ID] = rec
	return nil
}

func (s *userStore) SetPasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	rec.PasswordHash = hash
	rec.UpdatedAt = s.now()
	s.users[userID] = rec
	return nil
}

func (s *userStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(s.users, id)
	delete(s.byUsername, rec.Username)
	delete(s.byEmail, rec.Email)
	delete(s.userRoles, id)
	return nil
}

func (s *userStore) AddRole(_ context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return errs.ErrNotFound
	}
	if _, ok := s.roles[roleID]; !ok {
		return errs.ErrNotFound
	}
	links := s.userRoles[userID]
	if links == nil {
		links = make(map[string]struct{})
		s.userRoles[userID] = links
	}
	links[roleID] = struct{}{}
	return nil
}

func (s *userStore) RemoveRole(_ context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userRoles[userID], roleID)
	return nil
}

// Roles ---------------------------------------------------------------------

type roleStore Store

func (s *roleStore) Create(_ context.Context, r *model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.rolesByName[r.Name]; taken {
		return errs.ErrConflict
	}
	if r.ID == "" {
		r.ID = ids.New()
	}
	r.CreatedAt = s.now()
	s.roles[r.ID] = *r
	s.rolesByName[r.Name] = r.ID
	return nil
}

func (s *roleStore) Get(_ context.Context, id string) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &r, nil
}

func (s *roleStore) GetByName(_ context.Context, name string) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.rolesByName[name]
	if !ok {
		return nil, errs.ErrNotFound
	}
	r := s.roles[id]
	return &r, nil
}

func (s *roleStore) List(_ context.Context) ([]model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roles := make([]model.Role, 0, len(s.roles))
	for _, r := range s.roles {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// Tags ----------------------------------------------------------------------

type tagStore Store

func (s *tagStore) Create(_ context.Context, t *model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.tagsByName[t.Name]; taken {
		return errs.ErrConflict
	}
	if t.ID == "" {
		t.ID = ids.New()
	}
	t.CreatedAt = s.now()
	s.tags[t.ID] = *t
	s.tagsByName[t.Name] = t.ID
	return nil
}

func (s *tagStore) Get(_ context.Context, id string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &t, nil
}

func (s *tagStore) GetByName(_ context.Context, name string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tagsByName[name]
	if !ok {
		return nil, errs.ErrNotFound
	}
	t := s.tags[id]
	return &t, nil
}

func (s *tagStore) List(_ context.Context) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]model.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *tagStore) Rename(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return errs.ErrNotFound
	}
	if other, taken := s.tagsByName[name]; taken && other != id {
		return errs.ErrConflict
	}
	delete(s.tagsByName, t.Name)
	t.Name = name
	s.tags[id] = t
	s.tagsByName[name] = id
	return nil
}

func (s *tagStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(s.tags, id)
	delete(s.tagsByName, t.Name)
	for noteID := range s.noteTags {
		delete(s.noteTags[noteID], id)
	}
	return nil
}

// Notes ---------------------------------------------------------------------

type noteStore Store

func (s *noteStore) Create(_ context.Context, n *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = ids.New()
	}
	now := s.now()
	n.CreatedAt, n.UpdatedAt = now, now
	rec := *n
	rec.Tags = nil
	s.notes[n.ID] = rec
	return nil
}

func (s *noteStore) Get(_ context.Context, id string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.notes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	n := rec
	n.Tags = s.tagsOfLocked(id)
	return &n, nil
}

func (s *noteStore) Update(_ context.Context, n *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.notes[n.ID]
	if !ok {
		return errs.ErrNotFound
	}
	rec.Title = n.Title
	rec.Description = n.Description
	rec.UpdatedAt = s.now()
	s.notes[n.ID] = rec
	return nil
}

func (s *noteStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.notes, id)
	delete(s.noteTags, id)
	return nil
}

func (s *noteStore) List(_ context.Context) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := make([]model.Note, 0, len(s.notes))
	for _, n := range s.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Title < notes[j].Title })
	return notes, nil
}

func (s *noteStore) ListByTag(_ context.Context, tagID string) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var notes []model.Note
	for noteID, links := range s.noteTags {
		if _, linked := links[tagID]; linked {
			notes = append(notes, s.notes[noteID])
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Title < notes[j].Title })
	return notes, nil
}

// ReplaceTags swaps the link set in one step under the lock; readers never
// see a partially-updated set.
func (s *noteStore) ReplaceTags(_ context.Context, noteID string, tagIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[noteID]; !ok {
		return errs.ErrNotFound
	}
	links := make(map[string]struct{}, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := s.tags[tagID]; !ok {
			return errs.ErrNotFound
		}
		links[tagID] = struct{}{}
	}
	s.noteTags[noteID] = links
	return nil
}

func (s *noteStore) Tags(_ context.Context, noteID string) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[noteID]; !ok {
		return nil, errs.ErrNotFound
	}
	return s.tagsOfLocked(noteID), nil
}

func (s *noteStore) tagsOfLocked(noteID string) []model.Tag {
	var tags []model.Tag
	for tagID := range s.noteTags[noteID] {
		if t, ok := s.tags[tagID]; ok {
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}
