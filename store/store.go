// ABOUTME: SQLite-backed local state: the saved session, per-board drafts, recent boards.
// ABOUTME: Always rebuildable convenience state; never the source of truth for board content.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kudohq/kudo/board"
)

// Session is the locally saved identity written by a successful login.
type Session struct {
	Token    string
	UserID   string
	UserName string
}

// Recent is one recently viewed board.
type Recent struct {
	Slug     string
	Title    string
	ViewedAt time.Time
}

// Store is the local SQLite state under the data directory.
type Store struct {
	db *sql.DB
}

// Open opens or creates the local state database at the given path and
// ensures the schema is current.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS drafts (
			board_id TEXT PRIMARY KEY,
			author TEXT NOT NULL,
			message TEXT NOT NULL,
			background_color TEXT NOT NULL,
			text_color TEXT NOT NULL,
			image_url TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS recents (
			slug TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			viewed_at TEXT NOT NULL
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession stores the login result, replacing any prior session.
func (s *Store) SaveSession(sess Session) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, token, user_id, user_name) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token=excluded.token, user_id=excluded.user_id, user_name=excluded.user_name`,
		sess.Token, sess.UserID, sess.UserName)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Session returns the saved session, or ok=false when none is stored.
func (s *Store) Session() (Session, bool, error) {
	var sess Session
	err := s.db.QueryRow(`SELECT token, user_id, user_name FROM session WHERE id = 1`).
		Scan(&sess.Token, &sess.UserID, &sess.UserName)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return sess, true, nil
}

// ClearSession drops the saved session; the client becomes anonymous.
func (s *Store) ClearSession() error {
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SaveDraft keeps an unsent compose draft for one board.
func (s *Store) SaveDraft(boardID string, d board.Draft) error {
	_, err := s.db.Exec(`
		INSERT INTO drafts (board_id, author, message, background_color, text_color, image_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(board_id) DO UPDATE SET
			author=excluded.author, message=excluded.message,
			background_color=excluded.background_color, text_color=excluded.text_color,
			image_url=excluded.image_url, updated_at=excluded.updated_at`,
		boardID, d.Author, d.Message, d.BackgroundColor, d.TextColor, d.ImageURL,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Draft returns the saved draft for a board, or ok=false when none exists.
func (s *Store) Draft(boardID string) (board.Draft, bool, error) {
	var d board.Draft
	err := s.db.QueryRow(`
		SELECT author, message, background_color, text_color, image_url FROM drafts WHERE board_id = ?`,
		boardID).Scan(&d.Author, &d.Message, &d.BackgroundColor, &d.TextColor, &d.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return board.Draft{}, false, nil
	}
	if err != nil {
		return board.Draft{}, false, fmt.Errorf("load draft: %w", err)
	}
	return d, true, nil
}

// DeleteDraft removes a board's draft, typically after a successful submit.
func (s *Store) DeleteDraft(boardID string) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// TouchRecent records that a board was just viewed.
func (s *Store) TouchRecent(slug, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO recents (slug, title, viewed_at) VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET title=excluded.title, viewed_at=excluded.viewed_at`,
		slug, title, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("touch recent: %w", err)
	}
	return nil
}

// Recents lists recently viewed boards, most recent first.
func (s *Store) Recents(limit int) ([]Recent, error) {
	rows, err := s.db.Query(`
		SELECT slug, title, viewed_at FROM recents ORDER BY viewed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recents: %w", err)
	}
	defer rows.Close()

	var out []Recent
	for rows.Next() {
		var r Recent
		var viewed string
		if err := rows.Scan(&r.Slug, &r.Title, &viewed); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, viewed); err == nil {
			r.ViewedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
