package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

const pageCacheMigration = `
CREATE TABLE IF NOT EXISTS page_cache (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	page       INTEGER NOT NULL,
	body       TEXT NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(source, page)
);
`

// MigratePageCache creates the raw-page cache table. Separate from Migrate so
// the serve and runs commands can open the database without it.
func (s *Store) MigratePageCache(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, pageCacheMigration)
	return eris.Wrap(err, "store: migrate page cache")
}

// GetPage returns a cached raw listing page, if present.
func (s *Store) GetPage(ctx context.Context, source string, page int) (string, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM page_cache WHERE source = ? AND page = ?`,
		source, page,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "store: get page %s/%d", source, page)
	}
	return body, true, nil
}

// PutPage stores or replaces a raw listing page.
func (s *Store) PutPage(ctx context.Context, source string, page int, body string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_cache (id, source, page, body, fetched_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source, page) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		uuid.New().String(), source, page, body, time.Now().UTC(),
	)
	return eris.Wrapf(err, "store: put page %s/%d", source, page)
}
