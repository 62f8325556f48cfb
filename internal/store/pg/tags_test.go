package pg

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"notehub.org/internal/errs"
	"notehub.org/internal/model"
)

func TestTagStore_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	ctx := context.Background()
	now := time.Now()

	tag := &model.Tag{ID: "t1", Name: "work"}
	mock.ExpectQuery(`insert into tags \(id, name\) values \(\$1, \$2\) returning created_at`).
		WithArgs(tag.ID, tag.Name).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	require.NoError(t, db.Tags().Create(ctx, tag))
	require.Equal(t, now, tag.CreatedAt)

	mock.ExpectQuery(`insert into tags`).
		WithArgs(tag.ID, tag.Name).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, db.Tags().Create(ctx, tag), errs.ErrConflict)
}

func TestTagStore_GetByName(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`select id, name, created_at from tags where name = \$1`).
		WithArgs("work").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow("t1", "work", now))
	tag, err := db.Tags().GetByName(ctx, "work")
	require.NoError(t, err)
	require.Equal(t, "t1", tag.ID)

	mock.ExpectQuery(`from tags where name = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	_, err = db.Tags().GetByName(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTagStore_Rename(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectExec(`update tags set name = \$2 where id = \$1`).
		WithArgs("t1", "new-name").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, db.Tags().Rename(ctx, "t1", "new-name"))

	mock.ExpectExec(`update tags set name`).
		WithArgs("t1", "taken").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, db.Tags().Rename(ctx, "t1", "taken"), errs.ErrConflict)

	mock.ExpectExec(`update tags set name`).
		WithArgs("missing", "x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, db.Tags().Rename(ctx, "missing", "x"), errs.ErrNotFound)
}

func TestTagStore_List(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`select id, name, created_at from tags order by name`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow("t1", "a", now).
			AddRow("t2", "b", now))
	tags, err := db.Tags().List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "a", tags[0].Name)
	require.Equal(t, "b", tags[1].Name)
}
