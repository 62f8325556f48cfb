package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"notehub.org/internal/errs"
	"notehub.org/internal/ids"
	"notehub.org/internal/model"
)

type tagStore struct{ pool PgxPool }

func (s *tagStore) Create(ctx context.Context, t *model.Tag) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	const q = `insert into tags (id, name) values ($1, $2) returning created_at`
	err := s.pool.QueryRow(ctx, q, t.ID, t.Name).Scan(&t.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	return wrapErr(err)
}

func (s *tagStore) Get(ctx context.Context, id string) (*model.Tag, error) {
	const q = `select id, name, created_at from tags where id = $1`
	return s.scanTag(ctx, q, id)
}

func (s *tagStore) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	const q = `select id, name, created_at from tags where name = $1`
	return s.scanTag(ctx, q, name)
}

func (s *tagStore) scanTag(ctx context.Context, q string, arg any) (*model.Tag, error) {
	var t model.Tag
	err := s.pool.QueryRow(ctx, q, arg).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &t, nil
}

func (s *tagStore) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.pool.Query(ctx, `select id, name, created_at from tags order by name`)
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

func (s *tagStore) Rename(ctx context.Context, id, name string) error {
	tag, err := s.pool.Exec(ctx, `update tags set name = $2 where id = $1`, id, name)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *tagStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `delete from tags where id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
