package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"talkbot/internal/transcript"
)

// SQLite implements Store on a local SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: every in-memory connection is a separate database,
	// and file writers would otherwise trip over each other's locks.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			transcript TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Databases created before updated_at existed.
	return s.ensureColumn("users", "updated_at",
		"ALTER TABLE users ADD COLUMN updated_at DATETIME")
}

func (s *SQLite) ensureColumn(table, column, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// EnsureUser inserts an empty row for userID unless one exists.
// It reports whether a row was created.
func (s *SQLite) EnsureUser(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, transcript, language, created_at, updated_at) VALUES (?, '', '', ?, ?)`,
		userID, time.Now(), time.Now())
	if err != nil {
		return false, fmt.Errorf("insert user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// User returns nil when the row does not exist.
func (s *SQLite) User(ctx context.Context, userID int64) (*User, error) {
	var (
		u       User
		updated sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, language, transcript, created_at, updated_at FROM users WHERE user_id = ?`,
		userID).Scan(&u.ID, &u.Language, &u.Transcript, &u.CreatedAt, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user %d: %w", userID, err)
	}
	if updated.Valid {
		u.UpdatedAt = updated.Time
	}
	return &u, nil
}

// Language returns "" for unknown users.
func (s *SQLite) Language(ctx context.Context, userID int64) (string, error) {
	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT language FROM users WHERE user_id = ?`, userID).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select language %d: %w", userID, err)
	}
	return lang, nil
}

func (s *SQLite) SetLanguage(ctx context.Context, userID int64, lang string) error {
	return s.update(ctx, userID, `UPDATE users SET language = ?, updated_at = ? WHERE user_id = ?`, lang)
}

func (s *SQLite) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Append concatenates the encoded turn onto the stored transcript.
func (s *SQLite) Append(ctx context.Context, userID int64, turn transcript.Turn) error {
	rec, err := transcript.EncodeTurn(turn)
	if err != nil {
		return err
	}
	return s.update(ctx, userID, `UPDATE users SET transcript = transcript || ?, updated_at = ? WHERE user_id = ?`, rec)
}

func (s *SQLite) Raw(ctx context.Context, userID int64) (string, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT transcript FROM users WHERE user_id = ?`, userID).Scan(&blob)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	if err != nil {
		return "", fmt.Errorf("select transcript %d: %w", userID, err)
	}
	return blob, nil
}

func (s *SQLite) Turns(ctx context.Context, userID int64) ([]transcript.Turn, error) {
	blob, err := s.Raw(ctx, userID)
	if err != nil {
		return nil, err
	}
	turns, err := transcript.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	return turns, nil
}

func (s *SQLite) Clear(ctx context.Context, userID int64) error {
	return s.update(ctx, userID, `UPDATE users SET transcript = ?, updated_at = ? WHERE user_id = ?`, "")
}

// Replace installs a shortened transcript. The blob must decode cleanly.
func (s *SQLite) Replace(ctx context.Context, userID int64, blob string) error {
	if _, err := transcript.Decode(blob); err != nil {
		return fmt.Errorf("replace transcript %d: %w", userID, err)
	}
	return s.update(ctx, userID, `UPDATE users SET transcript = ?, updated_at = ? WHERE user_id = ?`, blob)
}

func (s *SQLite) update(ctx context.Context, userID int64, query string, value string) error {
	res, err := s.db.ExecContext(ctx, query, value, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	return nil
}
