package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"notehub.org/internal/errs"
	"notehub.org/internal/ids"
	"notehub.org/internal/model"
)

type noteStore struct{ pool PgxPool }

func (s *noteStore) Create(ctx context.Context, n *model.Note) error {
	if n.ID == "" {
		n.ID = ids.New()
	}
	const q = `
insert into notes (id, title, description)
values ($1, $2, $3)
returning created_at, updated_at`
	return wrapErr(s.pool.QueryRow(ctx, q, n.ID, n.Title, n.Description).
		Scan(&n.CreatedAt, &n.UpdatedAt))
}

func (s *noteStore) Get(ctx context.Context, id string) (*model.Note, error) {
	const q = `select id, title, description, created_at, updated_at from notes where id = $1`
	var n model.Note
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&n.ID, &n.Title, &n.Description, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	tags, err := s.Tags(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	n.Tags = tags
	return &n, nil
}

func (s *noteStore) Update(ctx context.Context, n *model.Note) error {
	const q = `
update notes set title = $2, description = $3, updated_at = now()
where id = $1`
	tag, err := s.pool.Exec(ctx, q, n.ID, n.Title, n.Description)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *noteStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `delete from notes where id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *noteStore) List(ctx context.Context) ([]model.Note, error) {
	const q = `select id, title, description, created_at, updated_at from notes order by title`
	return s.scanNotes(ctx, q)
}

func (s *noteStore) ListByTag(ctx context.Context, tagID string) ([]model.Note, error) {
	const q = `
select n.id, n.title, n.description, n.created_at, n.updated_at
from notes n
join note_tags nt on nt.note_id = n.id
where nt.tag_id = $1
order by n.title`
	return s.scanNotes(ctx, q, tagID)
}

func (s *noteStore) scanNotes(ctx context.Context, q string, args ...any) ([]model.Note, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Description, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, wrapErr(err)
		}
		notes = append(notes, n)
	}
	return notes, wrapErr(rows.Err())
}

// ReplaceTags swaps the note's link set inside one transaction so other
// readers never observe a partial set.
func (s *noteStore) ReplaceTags(ctx context.Context, noteID string, tagIDs []string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var one int
	err = tx.QueryRow(ctx, `select 1 from notes where id = $1`, noteID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return wrapErr(err)
	}

	if _, err := tx.Exec(ctx, `delete from note_tags where note_id = $1`, noteID); err != nil {
		return wrapErr(err)
	}
	for _, tagID := range tagIDs {
		_, err := tx.Exec(ctx,
			`insert into note_tags (note_id, tag_id) values ($1, $2) on conflict do nothing`,
			noteID, tagID,
		)
		if isForeignKeyViolation(err) {
			return errs.ErrNotFound
		}
		if err != nil {
			return wrapErr(err)
		}
	}
	return wrapErr(tx.Commit(ctx))
}

func (s *noteStore) Tags(ctx context.Context, noteID string) ([]model.Tag, error) {
	const q = `
select t.id, t.name, t.created_at
from tags t
join note_tags nt on nt.tag_id = t.id
where nt.note_id = $1
order by t.name`
	rows, err := s.pool.Query(ctx, q, noteID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, wrapErr(err)
		}
		tags = append(tags, t)
	}
	return tags, wrapErr(rows.Err())
}
