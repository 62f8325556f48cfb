// Package tags resolves free-form tag names to canonical records and keeps
// note-tag associations consistent.
package tags

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

// Index maps tag names to canonical Tag records, creating them on first
// reference. Tags are shared reference data: the index never deletes them.
type Index struct {
	store store.Store
}

// NewIndex constructs an Index over the credential store.
func NewIndex(st store.Store) (*Index, error) {
	if st == nil {
		return nil, errors.New("tags: store is required")
	}
	return &Index{store: st}, nil
}

// Ensure resolves name to its canonical record, creating it when absent.
// The store's uniqueness constraint on the name arbitrates concurrent
// creation: when two callers race to introduce the same new tag, the loser
// re-fetches the surviving record instead of erroring.
func (ix *Index) Ensure(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", errs.ErrInvalidInput)
	}
	tagStore := ix.store.Tags()

	tag, err := tagStore.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	created := &model.Tag{Name: name}
	err = tagStore.Create(ctx, created)
	if err == nil {
		obs.TagCreated()
		return created, nil
	}
	if errors.Is(err, errs.ErrConflict) {
		return tagStore.GetByName(ctx, name)
	}
	return nil, err
}
