// Package pg implements the store contract on PostgreSQL.
//
// Uniqueness constraints live in the schema (migrations); this package only
// maps constraint violations onto the shared sentinels so callers can resolve
// get-or-create races by re-fetching.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"notehub.org/internal/errs"
	"notehub.org/internal/store"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// PgxPool is the minimal pool surface the store uses. Implemented by
// *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

// Store implements store.Store using a PostgreSQL pool.
type Store struct{ pool PgxPool }

var _ store.Store = (*Store)(nil)

// Open connects and pings a pool for the given DSN.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return &Store{pool: pool}, nil
}

// NewStore wraps an existing pool. Used by tests with pgxmock.
func NewStore(pool PgxPool) *Store { return &Store{pool: pool} }

// Close shuts down the underlying pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) Users() store.UserStore { return &userStore{pool: s.pool} }
func (s *Store) Roles() store.RoleStore { return &roleStore{pool: s.pool} }
func (s *Store) Tags() store.TagStore   { return &tagStore{pool: s.pool} }
func (s *Store) Notes() store.NoteStore { return &noteStore{pool: s.pool} }

// wrapErr classifies a driver failure. Server-reported errors pass through
// untouched (constraint violations are mapped by the callers, no-rows by the
// scan helpers); anything else is a connectivity fault and surfaces as
// errs.ErrUnavailable so the boundary layer can drive retry policy off the
// sentinel.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.Is(err, pgx.ErrNoRows) || errors.As(err, &pgErr) {
		return err
	}
	return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == codeForeignKeyViolation
}
