package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finboard/internal/core"
	"finboard/internal/storage"
)

const (
	// DefaultSessionTTL keeps a login alive for a week of inactivity-free use.
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// Service implements registration, login and session resolution on top
// of the persistence ports.
type Service struct {
	users    storage.UserStore
	sessions storage.SessionStore
	ttl      time.Duration
	cost     int
}

func NewService(users storage.UserStore, sessions storage.SessionStore, ttl time.Duration, bcryptCost int) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, sessions: sessions, ttl: ttl, cost: bcryptCost}
}

// Register validates the form, checks email uniqueness and creates the
// account. Validation problems come back as field errors, not as an
// error value.
func (s *Service) Register(ctx context.Context, form core.RegistrationForm) (core.User, core.FieldErrors, error) {
	fe := form.Validate()
	if !fe.Has("email") {
		taken, err := s.users.EmailTaken(ctx, form.Email)
		if err != nil {
			return core.User{}, nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			fe.Add("email", core.RuleUnique)
		}
	}
	if !fe.Empty() {
		return core.User{}, fe, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return core.User{}, nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, core.User{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, storage.ErrEmailTaken) {
		// Lost the race with a concurrent registration.
		fe.Add("email", core.RuleUnique)
		return core.User{}, fe, nil
	}
	if err != nil {
		return core.User{}, nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil, nil
}

// CheckEmailAvailable backs the eager uniqueness check the register
// form runs as the user types.
func (s *Service) CheckEmailAvailable(ctx context.Context, email string) (core.FieldErrors, error) {
	fe := core.FieldErrors{}
	if email == "" {
		return fe, nil
	}
	if !core.ValidEmail(email) {
		fe.Add("email", core.RuleEmail)
		return fe, nil
	}
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		fe.Add("email", core.RuleUnique)
	}
	return fe, nil
}

// Login verifies the credentials and opens a session. A failed match
// reports the auth rule on the email field without revealing whether
// the account exists.
func (s *Service) Login(ctx context.Context, form core.LoginForm) (core.Session, core.FieldErrors, error) {
	fe := form.Validate()
	if !fe.Empty() {
		return core.Session{}, fe, nil
	}

	u, err := s.users.GetUserByEmail(ctx, form.Email)
	if errors.Is(err, core.ErrNotFound) {
		fe.Add("email", core.RuleAuth)
		return core.Session{}, fe, nil
	}
	if err != nil {
		return core.Session{}, nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(form.Password)) != nil {
		fe.Add("email", core.RuleAuth)
		return core.Session{}, fe, nil
	}

	sess := core.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return core.Session{}, nil, fmt.Errorf("create session: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", u.ID)
	return sess, nil, nil
}

// Logout drops the session; unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// UserFromToken resolves a session cookie value to the logged-in user.
func (s *Service) UserFromToken(ctx context.Context, token string) (core.User, error) {
	sess, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return core.User{}, err
	}
	return s.users.GetUser(ctx, sess.UserID)
}
