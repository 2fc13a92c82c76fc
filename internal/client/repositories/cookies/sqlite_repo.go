package cookies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
)

// DB is what the repository needs from *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

type SQLiteRepository struct {
	db  DB
	now func() time.Time
}

func NewSQLiteRepository(db DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Get returns the named cookie. Expired rows are swept on read.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (Cookie, error) {
	var (
		c       Cookie
		expires sql.NullInt64
		secure  int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT name, value, expires_at, same_site, secure FROM cookies WHERE name = ?`, name,
	).Scan(&c.Name, &c.Value, &expires, &c.SameSite, &secure)
	if errors.Is(err, sql.ErrNoRows) {
		return Cookie{}, common.ErrorNotFound
	}
	if err != nil {
		return Cookie{}, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}

	if expires.Valid {
		c.Expires = time.Unix(expires.Int64, 0)
	}
	c.Secure = secure != 0

	if c.Expired(r.now()) {
		if err := r.Remove(ctx, name); err != nil {
			return Cookie{}, err
		}
		return Cookie{}, common.ErrorNotFound
	}
	return c, nil
}

// Set upserts all cookies in one transaction.
func (r *SQLiteRepository) Set(ctx context.Context, cookies ...Cookie) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, c := range cookies {
			var expires sql.NullInt64
			if !c.Expires.IsZero() {
				expires = sql.NullInt64{Int64: c.Expires.Unix(), Valid: true}
			}
			sameSite := c.SameSite
			if sameSite == "" {
				sameSite = SameSiteStrict
			}
			secure := 0
			if c.Secure {
				secure = 1
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO cookies (name, value, expires_at, same_site, secure) VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(name) DO UPDATE SET
					value = excluded.value,
					expires_at = excluded.expires_at,
					same_site = excluded.same_site,
					secure = excluded.secure
			`, c.Name, c.Value, expires, string(sameSite), secure)
			if err != nil {
				return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
			}
		}
		return nil
	})
}

// Remove deletes the named cookies in one transaction. Absent names are ignored.
func (r *SQLiteRepository) Remove(ctx context.Context, names ...string) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name); err != nil {
				return fmt.Errorf("failed to remove cookie[%s]: %w", name, err)
			}
		}
		return nil
	})
}
