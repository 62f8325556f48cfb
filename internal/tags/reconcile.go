package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"notehub.org/internal/errs"
	"notehub.org/internal/obs"
	"notehub.org/internal/store"
)

// maxNameLen bounds a single tag name after trimming.
const maxNameLen = 128

// Reconciler replaces a note's tag associations with the set resolved from
// a requested name list. The replace is full, not incremental, which makes
// reconciliation idempotent: running it twice with the same input leaves
// the same final state.
type Reconciler struct {
	store store.Store
	index *Index
}

// NewReconciler constructs a Reconciler over the credential store.
func NewReconciler(st store.Store) (*Reconciler, error) {
	index, err := NewIndex(st)
	if err != nil {
		return nil, err
	}
	return &Reconciler{store: st, index: index}, nil
}

// Index returns the underlying tag index.
func (r *Reconciler) Index() *Index { return r.index }

// ValidateNames runs the same normalization Reconcile applies, without
// touching the store. Callers that persist other records in the same flow
// use it to reject bad input before writing anything.
func (r *Reconciler) ValidateNames(requestedNames []string) error {
	_, err := normalize(requestedNames)
	return err
}

// Reconcile resolves requestedNames to canonical tags and atomically
// replaces the note's association set with exactly that set. Names are
// trimmed, empties discarded, and duplicates collapsed keeping first-seen
// order. Validation happens before any mutation, so a rejected input never
// leaves a partial application behind. Tags unlinked by the replace are
// never deleted.
func (r *Reconciler) Reconcile(ctx context.Context, noteID string, requestedNames []string) error {
	if strings.TrimSpace(noteID) == "" {
		return fmt.Errorf("%w: note is not persisted", errs.ErrInvalidInput)
	}
	names, err := normalize(requestedNames)
	if err != nil {
		return err
	}

	// The note must exist before any tag record is created, so a reconcile
	// against a missing note cannot leave stray tags behind.
	if _, err := r.store.Notes().Get(ctx, noteID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%w: note %s", errs.ErrNotFound, noteID)
		}
		return err
	}

	tagIDs := make([]string, 0, len(names))
	for _, name := range names {
		tag, err := r.index.Ensure(ctx, name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := r.store.Notes().ReplaceTags(ctx, noteID, tagIDs); err != nil {
		return err
	}
	obs.Reconcile()
	return nil
}

// normalize trims names, discards empties and collapses duplicates while
// preserving first-seen order. Malformed entries reject the whole input
// before any store write.
func normalize(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		if !utf8.ValidString(raw) {
			return nil, fmt.Errorf("%w: tag name is not valid UTF-8", errs.ErrInvalidInput)
		}
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > maxNameLen {
			return nil, fmt.Errorf("%w: tag name exceeds %d characters", errs.ErrInvalidInput, maxNameLen)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
