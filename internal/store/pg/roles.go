package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"notehub.org/internal/errs"
	"notehub.org/internal/ids"
	"notehub.org/internal/model"
)

type roleStore struct{ pool PgxPool }

func (s *roleStore) Create(ctx context.Context, r *model.Role) error {
	if r.ID == "" {
		r.ID = ids.New()
	}
	const q = `insert into roles (id, name) values ($1, $2) returning created_at`
	err := s.pool.QueryRow(ctx, q, r.ID, r.Name).Scan(&r.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	return wrapErr(err)
}

func (s *roleStore) Get(ctx context.Context, id string) (*model.Role, error) {
	const q = `select id, name, created_at from roles where id = $1`
	return s.scanRole(ctx, q, id)
}

func (s *roleStore) GetByName(ctx context.Context, name string) (*model.Role, error) {
	const q = `select id, name, created_at from roles where name = $1`
	return s.scanRole(ctx, q, name)
}

func (s *roleStore) scanRole(ctx context.Context, q string, arg any) (*model.Role, error) {
	var r model.Role
	err := s.pool.QueryRow(ctx, q, arg).Scan(&r.ID, &r.Name, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &r, nil
}

func (s *roleStore) List(ctx context.Context) ([]model.Role, error) {
	rows, err := s.pool.Query(ctx, `select id, name, created_at from roles order by name`)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, wrapErr(err)
		}
		roles = append(roles, r)
	}
	return roles, wrapErr(rows.Err())
}
