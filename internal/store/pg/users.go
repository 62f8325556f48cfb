package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"notehub.org/internal/errs"
	"notehub.org/internal/ids"
	"notehub.org/internal/model"
)

type userStore struct{ pool PgxPool }

func (s *userStore) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	const q = `
insert into users (id, username, email, name, status, password_hash)
values ($1, $2, $3, $4, $5, $6)
returning created_at, updated_at`
	err := s.pool.QueryRow(ctx, q, u.ID, u.Username, u.Email, u.Name, u.Status, u.PasswordHash).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	return wrapErr(err)
}

func (s *userStore) Get(ctx context.Context, id string) (*model.User, error) {
	const q = `
select id, username, email, name, status, password_hash, created_at, updated_at
from users where id = $1`
	return s.scanUser(ctx, q, id)
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
select id, username, email, name, status, password_hash, created_at, updated_at
from users where username = $1`
	return s.scanUser(ctx, q, username)
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
select id, username, email, name, status, password_hash, created_at, updated_at
from users where email = $1`
	return s.scanUser(ctx, q, email)
}

func (s *userStore) scanUser(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.Name, &u.Status,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	roles, err := s.rolesFor(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (s *userStore) rolesFor(ctx context.Context, userID string) ([]model.Role, error) {
	const q = `
select r.id, r.name, r.created_at
from roles r
join user_roles ur on ur.role_id = r.id
where ur.user_id = $1
order by r.name`
	rows, err := s.pool.Query(ctx, q, userID)
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

func (s *userStore) List(ctx context.Context) ([]model.User, error) {
	const q = `
select id, username, email, name, status, password_hash, created_at, updated_at
from users order by username`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.Name, &u.Status,
			&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, wrapErr(err)
		}
		users = append(users, u)
	}
	return users, wrapErr(rows.Err())
}

func (s *userStore) Update(ctx context.Context, u *model.User) error {
	const q = `
update users set email = $2, name = $3, status = $4, updated_at = now()
where id = $1`
	tag, err := s.pool.Exec(ctx, q, u.ID, u.Email, u.Name, u.Status)
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

func (s *userStore) SetPasswordHash(ctx context.Context, userID, hash string) error {
	const q = `update users set password_hash = $2, updated_at = now() where id = $1`
	tag, err := s.pool.Exec(ctx, q, userID, hash)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *userStore) AddRole(ctx context.Context, userID, roleID string) error {
	const q = `insert into user_roles (user_id, role_id) values ($1, $2) on conflict do nothing`
	_, err := s.pool.Exec(ctx, q, userID, roleID)
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return wrapErr(err)
}

func (s *userStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	const q = `delete from user_roles where user_id = $1 and role_id = $2`
	_, err := s.pool.Exec(ctx, q, userID, roleID)
	return wrapErr(err)
}
