// Package notes provides note CRUD layered over the credential store and
// the tag reconciler.
package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
	"notehub.org/internal/store"
	"notehub.org/internal/tags"
)

// Service manages notes and their tag associations.
type Service struct {
	store store.Store
	rec   *tags.Reconciler
	log   *zap.Logger
}

// NewService constructs the note service.
func NewService(st store.Store, rec *tags.Reconciler, log *zap.Logger) (*Service, error) {
	if st == nil || rec == nil {
		return nil, errors.New("notes: store and reconciler are required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, rec: rec, log: log}, nil
}

// Create persists a new note and reconciles its tag set from tagNames.
func (s *Service) Create(ctx context.Context, title, description string, tagNames []string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	// Bad tag names must not leave a stray note behind, so they are
	// rejected before the note is persisted.
	if err := s.rec.ValidateNames(tagNames); err != nil {
		return nil, err
	}
	n := &model.Note{Title: title, Description: description}
	if err := s.store.Notes().Create(ctx, n); err != nil {
		return nil, err
	}
	if err := s.rec.Reconcile(ctx, n.ID, tagNames); err != nil {
		return nil, err
	}
	s.log.Info("note created", zap.String("note_id", n.ID))
	return s.store.Notes().Get(ctx, n.ID)
}

// Update rewrites the note's title and description and reconciles its tag
// set from tagNames. The tag list is the full desired state, not a diff.
func (s *Service) Update(ctx context.Context, id, title, description string, tagNames []string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	// Rejecting the tag list after rewriting the title would leave the note
	// half-updated; validate first so the whole call is all-or-nothing.
	if err := s.rec.ValidateNames(tagNames); err != nil {
		return nil, err
	}
	n := &model.Note{ID: id, Title: title, Description: description}
	if err := s.store.Notes().Update(ctx, n); err != nil {
		return nil, err
	}
	if err := s.rec.Reconcile(ctx, id, tagNames); err != nil {
		return nil, err
	}
	return s.store.Notes().Get(ctx, id)
}

// Get returns the note with its tag set loaded.
func (s *Service) Get(ctx context.Context, id string) (*model.Note, error) {
	return s.store.Notes().Get(ctx, id)
}

// Delete removes the note and its tag links. Tag records stay behind; they
// are shared reference data.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Notes().Delete(ctx, id)
}

// List returns all notes ordered by title.
func (s *Service) List(ctx context.Context) ([]model.Note, error) {
	return s.store.Notes().List(ctx)
}

// ListByTag returns the notes associated with the named tag.
func (s *Service) ListByTag(ctx context.Context, tagName string) ([]model.Note, error) {
	tag, err := s.store.Tags().GetByName(ctx, strings.TrimSpace(tagName))
	if err != nil {
		return nil, err
	}
	return s.store.Notes().ListByTag(ctx, tag.ID)
}

// ListTags returns the tag catalog ordered by name.
func (s *Service) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.store.Tags().List(ctx)
}

// RenameTag changes a tag's name everywhere it is referenced.
func (s *Service) RenameTag(ctx context.Context, tagID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: tag name is required", errs.ErrInvalidInput)
	}
	return s.store.Tags().Rename(ctx, tagID, newName)
}
