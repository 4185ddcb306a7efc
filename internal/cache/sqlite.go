// Package cache provides a SQLite-backed local cache of the reconciled
// notification list, so a degraded session can still serve the
// last-known state across restarts.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stocktray/stocktray/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	priority TEXT NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	data TEXT NOT NULL DEFAULT '{}',
	position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_position ON notifications(position);
`

// Cache is the SQLite-backed notification cache.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at the provided path.
func Open(dbPath string) (*Cache, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("notification cache: db path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("notification cache: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("notification cache: open db: %w", err)
	}

	c := &Cache{db: db}
	if err := c.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

// Close closes the underlying SQLite connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) init() error {
	if _, err := c.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("notification cache: set busy timeout: %w", err)
	}
	if _, err := c.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("notification cache: create schema: %w", err)
	}
	return nil
}

// Save replaces the cached list with the given sequence, preserving its
// order. Runs in a single transaction so a failure leaves the previous
// contents intact.
func (c *Cache) Save(notifications []domain.Notification) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("notification cache: begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM notifications"); err != nil {
		return fmt.Errorf("notification cache: clear: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO notifications
		(id, category, title, message, priority, read, created_at, data, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("notification cache: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range notifications {
		payload := "{}"
		if n.Data != nil {
			data, err := json.Marshal(n.Data)
			if err != nil {
				return fmt.Errorf("notification cache: encode payload for %s: %w", n.ID, err)
			}
			payload = string(data)
		}
		read := 0
		if n.Read {
			read = 1
		}
		if _, err := stmt.Exec(
			n.ID, string(n.Category), n.Title, n.Message, string(n.Priority),
			read, n.CreatedAt.UTC().Format(time.RFC3339Nano), payload, i,
		); err != nil {
			return fmt.Errorf("notification cache: insert %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("notification cache: commit save: %w", err)
	}
	return nil
}

// Load returns the cached list in its saved order.
func (c *Cache) Load() ([]domain.Notification, error) {
	rows, err := c.db.Query(`SELECT id, category, title, message, priority, read, created_at, data
		FROM notifications ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("notification cache: load: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var (
			n         domain.Notification
			category  string
			priority  string
			read      int
			createdAt string
			payload   string
		)
		if err := rows.Scan(&n.ID, &category, &n.Title, &n.Message, &priority, &read, &createdAt, &payload); err != nil {
			return nil, fmt.Errorf("notification cache: scan row: %w", err)
		}
		n.Category = domain.Category(category)
		n.Priority = domain.Priority(priority)
		n.Read = read != 0
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("notification cache: parse timestamp for %s: %w", n.ID, err)
		}
		n.CreatedAt = ts
		if payload != "" && payload != "{}" {
			if err := json.Unmarshal([]byte(payload), &n.Data); err != nil {
				return nil, fmt.Errorf("notification cache: decode payload for %s: %w", n.ID, err)
			}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notification cache: load: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of cached notifications with read=0.
func (c *Cache) UnreadCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM notifications WHERE read = 0").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("notification cache: count unread: %w", err)
	}
	return count, nil
}

// DefaultPath returns the cache location under the user state directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("STOCKTRAY_STATE_DIR"); dir != "" {
		return filepath.Join(dir, "notifications.db"), nil
	}
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "stocktray", "notifications.db"), nil
}
