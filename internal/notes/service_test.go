package notes

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"notehub.org/internal/errs"
	"notehub.org/internal/store/memory"
	"notehub.org/internal/tags"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	rec, err := tags.NewReconciler(st)
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}
	svc, err := NewService(st, rec, zap.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, st
}

func TestCreateReconcilesTags(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	n, err := svc.Create(ctx, "  groceries  ", "weekly run", []string{"errand", " errand ", "food"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Title != "groceries" {
		t.Fatalf("title not trimmed: %q", n.Title)
	}
	if len(n.Tags) != 2 || n.Tags[0].Name != "errand" || n.Tags[1].Name != "food" {
		t.Fatalf("expected tags errand+food, got %+v", n.Tags)
	}

	if _, err := svc.Create(ctx, "   ", "", nil); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("blank title: expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateWithRejectedTagsPersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	_, err := svc.Create(ctx, "trip", "d", []string{string([]byte{0xff, 0xfe})})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	all, err := st.Notes().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("stray note persisted after rejected create: %+v", all)
	}
	catalog, _ := st.Tags().List(ctx)
	if len(catalog) != 0 {
		t.Fatalf("stray tags persisted after rejected create: %+v", catalog)
	}
}

func TestUpdateWithRejectedTagsLeavesNoteUntouched(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	n, err := svc.Create(ctx, "trip", "plan", []string{"travel"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(ctx, n.ID, "renamed", "rewritten", []string{string([]byte{0xff, 0xfe})})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	got, err := svc.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "trip" || got.Description != "plan" {
		t.Fatalf("note changed by rejected update: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "travel" {
		t.Fatalf("tag set changed by rejected update: %+v", got.Tags)
	}
}

func TestUpdateReplacesTagSet(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	n, err := svc.Create(ctx, "trip", "", []string{"travel", "planning"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, n.ID, "trip 2026", "itinerary", []string{"travel", "booked"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "trip 2026" || updated.Description != "itinerary" {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if len(updated.Tags) != 2 || updated.Tags[0].Name != "booked" || updated.Tags[1].Name != "travel" {
		t.Fatalf("tag set not replaced: %+v", updated.Tags)
	}

	// The dropped tag record is still in the catalog.
	if _, err := st.Tags().GetByName(ctx, "planning"); err != nil {
		t.Fatalf("unlinked tag removed from catalog: %v", err)
	}
}

func TestListByTag(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	if _, err := svc.Create(ctx, "zebra", "", []string{"animal"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "apple", "", []string{"fruit"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "mango", "", []string{"fruit"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	fruit, err := svc.ListByTag(ctx, " fruit ")
	if err != nil {
		t.Fatalf("ListByTag: %v", err)
	}
	if len(fruit) != 2 || fruit[0].Title != "apple" || fruit[1].Title != "mango" {
		t.Fatalf("expected apple+mango ordered by title, got %+v", fruit)
	}

	if _, err := svc.ListByTag(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown tag: expected ErrNotFound, got %v", err)
	}
}

func TestRenameTagReflectedOnNotes(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	n, err := svc.Create(ctx, "meeting", "", []string{"wokr"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tag, err := st.Tags().GetByName(ctx, "wokr")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}

	if err := svc.RenameTag(ctx, tag.ID, "work"); err != nil {
		t.Fatalf("RenameTag: %v", err)
	}
	got, err := svc.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "work" {
		t.Fatalf("rename not visible through the note: %+v", got.Tags)
	}

	if err := svc.RenameTag(ctx, tag.ID, "  "); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("blank rename: expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteNoteKeepsTagCatalog(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	n, err := svc.Create(ctx, "scratch", "", []string{"temp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, n.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("deleted note still readable: %v", err)
	}
	if _, err := st.Tags().GetByName(ctx, "temp"); err != nil {
		t.Fatalf("tag catalog lost a record on note delete: %v", err)
	}

	if err := svc.Delete(ctx, n.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListTagsReturnsCatalogOrdered(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	if _, err := svc.Create(ctx, "n1", "", []string{"b", "a"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	all, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(all) != 2 || all[0].Name != "a" || all[1].Name != "b" {
		t.Fatalf("expected a,b ordered by name, got %+v", all)
	}
}
