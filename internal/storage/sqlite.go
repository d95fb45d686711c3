package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finboard/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- transactions ---

func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount_cents, status, date FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, amount_cents, status, date FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, err
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (title, amount_cents, status, date) VALUES (?, ?, ?, ?)`,
		t.Title, t.Amount.Cents, string(t.Status), t.Date.ISO())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"title", t.Title,
		"amount_cents", t.Amount.Cents,
		"status", t.Status)
	return t, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET title = ?, amount_cents = ?, status = ?, date = ? WHERE id = ?`,
		t.Title, t.Amount.Cents, string(t.Status), t.Date.ISO(), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteTransactions(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t      core.Transaction
		status string
		date   string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Amount.Cents, &status, &date); err != nil {
		return core.Transaction{}, err
	}
	t.Status = core.Status(status)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: bad stored date %q: %w", t.ID, date, err)
	}
	t.Date = d
	return t, nil
}

// --- users ---

func (s *SQLiteStore) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	taken, err := s.EmailTaken(ctx, u.Email)
	if err != nil {
		return core.User{}, err
	}
	if taken {
		return core.User{}, ErrEmailTaken
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, username, about, birthday, avatar_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Username, u.About, birthdayColumn(u.Birthday), u.AvatarPath)
	if err != nil {
		// The unique index still backs the pre-check under
		// concurrent registration.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("read user id: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "id", u.ID, "email", u.Email)
	return u, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, username, about, birthday, avatar_path FROM users `+where, arg)

	var (
		u        core.User
		birthday string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Username, &u.About, &birthday, &u.AvatarPath)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	if birthday != "" {
		d, err := core.ParseDate(birthday)
		if err != nil {
			return core.User{}, fmt.Errorf("user %d: bad stored birthday %q: %w", u.ID, birthday, err)
		}
		u.Birthday = d
	}
	return u, nil
}

func (s *SQLiteStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, u core.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, about = ?, birthday = ?, avatar_path = ? WHERE id = ?`,
		u.Username, u.About, birthdayColumn(u.Birthday), u.AvatarPath, u.ID)
	if err != nil {
		return fmt.Errorf("update profile %d: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile %d: %w", u.ID, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func birthdayColumn(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.ISO()
}

// --- sessions ---

func (s *SQLiteStore) CreateSession(ctx context.Context, sess core.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		sess.Token, sess.UserID, sess.ExpiresAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, token string) (core.Session, error) {
	var (
		sess    core.Session
		expires string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&sess.Token, &sess.UserID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.ErrNotFound
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("get session: %w", err)
	}
	sess.ExpiresAt, err = time.Parse(time.RFC3339, expires)
	if err != nil {
		return core.Session{}, fmt.Errorf("session %s: bad expiry %q: %w", token, expires, err)
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.DeleteSession(ctx, token)
		return core.Session{}, core.ErrNotFound
	}
	return sess, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions purged", "count", n)
	}
	return n, nil
}
