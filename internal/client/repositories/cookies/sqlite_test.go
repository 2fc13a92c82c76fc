package cookies

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cookies (
  name       TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  expires_at INTEGER,
  same_site  TEXT NOT NULL DEFAULT 'strict',
  secure     INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func newRepoAt(t *testing.T, now time.Time) *SQLiteRepository {
	t.Helper()
	r := NewSQLiteRepository(setupDB(t))
	r.now = func() time.Time { return now }
	return r
}

func TestSetAndGet_RoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	r := newRepoAt(t, now)
	ctx := context.Background()

	exp := now.Add(time.Hour)
	require.NoError(t, r.Set(ctx,
		Cookie{Name: "access_token", Value: "a1", Expires: exp, SameSite: SameSiteStrict, Secure: true},
		Cookie{Name: "refresh_token", Value: "r1"},
	))

	c, err := r.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, "a1", c.Value)
	assert.True(t, c.Expires.Equal(exp))
	assert.Equal(t, SameSiteStrict, c.SameSite)
	assert.True(t, c.Secure)

	c, err = r.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "r1", c.Value)
	assert.True(t, c.Expires.IsZero(), "session cookie has no expiry")
	assert.Equal(t, SameSiteStrict, c.SameSite, "same-site defaults to strict")
}

func TestSet_Overwrites(t *testing.T) {
	r := newRepoAt(t, time.Now())
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, Cookie{Name: "access_token", Value: "old"}))
	require.NoError(t, r.Set(ctx, Cookie{Name: "access_token", Value: "new"}))

	c, err := r.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, "new", c.Value)
}

func TestGet_ExpiredReadsAsAbsentAndIsSwept(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	r := newRepoAt(t, now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, Cookie{Name: "access_token", Value: "a", Expires: now.Add(-time.Second)}))

	_, err := r.Get(ctx, "access_token")
	require.ErrorIs(t, err, common.ErrorNotFound)

	var n int
	require.NoError(t, r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cookies`).Scan(&n))
	assert.Zero(t, n)
}

func TestRemove_ManyAndAbsent(t *testing.T) {
	r := newRepoAt(t, time.Now())
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, Cookie{Name: "access_token", Value: "a"}, Cookie{Name: "refresh_token", Value: "r"}))
	require.NoError(t, r.Remove(ctx, "access_token", "refresh_token", "missing"))

	_, err := r.Get(ctx, "access_token")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Get(ctx, "refresh_token")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSet_FailureRollsBackWholeBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cookies").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO cookies").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	r := NewSQLiteRepository(db)
	err = r.Set(context.Background(), Cookie{Name: "access_token", Value: "a"}, Cookie{Name: "refresh_token", Value: "r"})
	require.ErrorContains(t, err, "failed to set cookie[refresh_token]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_DriverErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.Get(context.Background(), "access_token")
	require.ErrorContains(t, err, "failed to get cookie[access_token]")
}

func TestMemoryJar_ExpiryAndRemove(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	j := NewMemoryJar()
	j.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, j.Set(ctx,
		Cookie{Name: "live", Value: "1", Expires: now.Add(time.Minute)},
		Cookie{Name: "dead", Value: "2", Expires: now},
	))

	c, err := j.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, SameSiteStrict, c.SameSite)

	_, err = j.Get(ctx, "dead")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, j.Remove(ctx, "live"))
	_, err = j.Get(ctx, "live")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
