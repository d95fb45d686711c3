package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"finboard/internal/core"
)

// MemoryStore keeps everything in process memory. It backs tests and
// the "memory" backend for local development without a database file.
type MemoryStore struct {
	mu           sync.Mutex
	transactions []core.Transaction
	users        []core.User
	sessions     map[string]core.Session
	nextTxID     int64
	nextUserID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]core.Session),
		nextTxID:   1,
		nextUserID: 1,
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextTxID
	s.nextTxID++
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *MemoryStore) DeleteTransactions(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.transactions[:0]
	var n int64
	for _, t := range s.transactions {
		if _, ok := drop[t.ID]; ok {
			n++
			continue
		}
		kept = append(kept, t)
	}
	s.transactions = kept
	return n, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTakenLocked(u.Email) {
		return core.User{}, ErrEmailTaken
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.users = append(s.users, u)
	return u, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *MemoryStore) EmailTaken(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emailTakenLocked(email), nil
}

func (s *MemoryStore) emailTakenLocked(email string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) UpdateUserProfile(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i].Username = u.Username
			s.users[i].About = u.About
			s.users[i].Birthday = u.Birthday
			s.users[i].AvatarPath = u.AvatarPath
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *MemoryStore) CreateSession(_ context.Context, sess core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok || time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return core.Session{}, core.ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) PurgeExpiredSessions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := time.Now()
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}
