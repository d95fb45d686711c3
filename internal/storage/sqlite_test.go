package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "finboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := core.Transaction{
		Title:  "Payment to Mason Clark",
		Amount: core.Money{Cents: 99950},
		Status: core.StatusProcessing,
		Date:   core.NewDate(2025, 7, 14),
	}
	created, err := s.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != in.Title || got.Amount != in.Amount || got.Status != in.Status || got.Date.ISO() != "2025-07-14" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.Title = "Payment to Mason Clark (corrected)"
	if err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := s.GetTransaction(ctx, created.ID)
	if again.Title != got.Title {
		t.Fatalf("update not persisted: %+v", again)
	}
}

func TestSQLiteListOrderedByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := s.CreateTransaction(ctx, core.Transaction{
			Title:  "row",
			Amount: core.Money{Cents: int64(100 * (i + 1))},
			Status: core.StatusSuccess,
			Date:   core.NewDate(2025, 1, i+1),
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	rows, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("listed %d rows", len(rows))
	}
	for i, tx := range rows {
		if tx.ID != int64(i+1) {
			t.Fatalf("list not ordered by id: %v", rows)
		}
	}
}

func TestSQLiteBulkDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := s.CreateTransaction(ctx, core.Transaction{
			Title: "row", Amount: core.Money{Cents: 100},
			Status: core.StatusSuccess, Date: core.NewDate(2025, 1, 1),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	n, err := s.DeleteTransactions(ctx, []int64{1, 3, 5, 99})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 3 {
		t.Fatalf("deleted %d rows, want 3", n)
	}
	rows, _ := s.ListTransactions(ctx)
	if len(rows) != 2 || rows[0].ID != 2 || rows[1].ID != 4 {
		t.Fatalf("survivors wrong: %v", rows)
	}

	n, err = s.DeleteTransactions(ctx, nil)
	if err != nil || n != 0 {
		t.Fatalf("empty delete: n=%d err=%v", n, err)
	}
}

func TestSQLiteUserUniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.CreateUser(ctx, core.User{
		Name:         "Daniel Sanchez",
		Email:        "dsanchez@gmail.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	taken, err := s.EmailTaken(ctx, "dsanchez@gmail.com")
	if err != nil || !taken {
		t.Fatalf("email should be taken: %v %v", taken, err)
	}

	if _, err := s.CreateUser(ctx, core.User{
		Name: "Impostor", Email: "DSANCHEZ@gmail.com", PasswordHash: "x",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email accepted: %v", err)
	}

	byEmail, err := s.GetUserByEmail(ctx, "dsanchez@gmail.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("lookup by email: %+v %v", byEmail, err)
	}
}

func TestSQLiteProfileUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.CreateUser(ctx, core.User{Name: "Emma Davis", Email: "emma@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u.Username = "emma"
	u.About = "I like personal finance."
	u.Birthday = core.NewDate(1990, 4, 12)
	u.AvatarPath = "avatars/1.png"
	if err := s.UpdateUserProfile(ctx, u); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != "emma" || got.About != u.About || got.Birthday.ISO() != "1990-04-12" || got.AvatarPath != "avatars/1.png" {
		t.Fatalf("profile not persisted: %+v", got)
	}
	if got.Name != "Emma Davis" || got.Email != "emma@example.com" {
		t.Fatalf("profile update touched account fields: %+v", got)
	}
}

func TestSQLiteSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.CreateUser(ctx, core.User{Name: "Liam Johnson", Email: "liam@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess := core.Session{Token: "tok-1", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	got, err := s.GetSession(ctx, "tok-1")
	if err != nil || got.UserID != u.ID {
		t.Fatalf("get session: %+v %v", got, err)
	}

	expired := core.Session{Token: "tok-2", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	if _, err := s.GetSession(ctx, "tok-2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expired session served: %v", err)
	}

	if err := s.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := s.GetSession(ctx, "tok-1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted session served: %v", err)
	}
}
