// Package archive keeps a durable record of every delivered post in a
// SQLite database. The dedup store only remembers identities; the
// archive keeps the content, so operators can inspect what was actually
// relayed. Archive writes are best-effort and never block delivery.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"fb_bot/internal/model"
	"fb_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// DeliveredPost is one archived delivery.
type DeliveredPost struct {
	PostID   string
	PageName string
	Text     string
	Link     string
	SentAt   time.Time
}

// Archive stores delivered posts in SQLite.
type Archive struct {
	db *sql.DB
}

// Open opens the archive database at dsn and runs pending migrations.
func Open(dsn string) (*Archive, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record stores one delivered post. Recording the same post twice is a
// no-op, so a redelivery after a lost dedup mark does not fail.
func (a *Archive) Record(ctx context.Context, p model.Post) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO delivered_posts (post_id, page_name, text, link, sent_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(post_id) DO NOTHING`,
		p.ID, p.PageName, p.Text, p.Link, now,
	)
	if err != nil {
		return fmt.Errorf("insert delivered post: %w", err)
	}
	return nil
}

// Recent returns the n most recently delivered posts, newest first.
func (a *Archive) Recent(ctx context.Context, n int) ([]DeliveredPost, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT post_id, page_name, text, link, sent_at
		 FROM delivered_posts ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query delivered posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []DeliveredPost
	for rows.Next() {
		var p DeliveredPost
		var sentAt string
		if err := rows.Scan(&p.PostID, &p.PageName, &p.Text, &p.Link, &sentAt); err != nil {
			return nil, fmt.Errorf("scan delivered post: %w", err)
		}
		p.SentAt, _ = time.Parse(timeLayout, sentAt)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Count returns the total number of archived deliveries.
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM delivered_posts`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count delivered posts: %w", err)
	}
	return n, nil
}
