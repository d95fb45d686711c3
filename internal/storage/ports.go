package storage

import (
	"context"
	"errors"

	"finboard/internal/core"
)

// ErrEmailTaken is returned by CreateUser when the email is already
// registered. Handlers map it to the "unique" field error on email.
var ErrEmailTaken = errors.New("email already registered")

// Ports for the persistence adapters. The dashboard controller depends
// only on the transaction subset; handlers use the rest.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransactions(ctx context.Context, ids []int64) (int64, error)
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		// EmailTaken backs the eager uniqueness check on the
		// registration form, before the user submits.
		EmailTaken(ctx context.Context, email string) (bool, error)
		UpdateUserProfile(ctx context.Context, u core.User) error
	}

	SessionStore interface {
		CreateSession(ctx context.Context, s core.Session) error
		// GetSession returns core.ErrNotFound for unknown or expired
		// tokens.
		GetSession(ctx context.Context, token string) (core.Session, error)
		DeleteSession(ctx context.Context, token string) error
		PurgeExpiredSessions(ctx context.Context) (int64, error)
	}

	// Store is the full persistence surface a backend must provide.
	Store interface {
		TransactionStore
		UserStore
		SessionStore
		Close() error
	}
)
