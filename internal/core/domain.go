package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusSuccess    Status = "success"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
)

type (
	// Status is the lifecycle state of a transaction.
	Status string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single finance record shown on the dashboard.
	// ID is assigned by the store and never changes afterwards.
	Transaction struct {
		ID     int64
		Title  string
		Amount Money
		Status Status
		Date   Date
	}

	// User is a registered account. PasswordHash holds a bcrypt hash,
	// never the plaintext password.
	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string

		// Profile fields, all optional.
		Username   string
		About      string
		Birthday   Date
		AvatarPath string
	}

	// Session is a server-side login session, addressed by an opaque
	// token carried in a cookie.
	Session struct {
		Token     string
		UserID    int64
		ExpiresAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotFound      = errors.New("record not found")
)

// Statuses lists the allowed transaction statuses in rank order.
// The order doubles as the sort rank for the status column.
var Statuses = []Status{StatusSuccess, StatusProcessing, StatusFailed}

// ParseStatus validates a raw form value against the allowed set.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Rank returns the position of the status in the allowed set, for
// deterministic status-column sorting. Unknown statuses sort last.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return len(Statuses)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// NewDate creates a new Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date, truncated to midnight UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a form date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO formats the date as YYYY-MM-DD for forms and CSV output.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// IsEmpty returns true if the date is zero (optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// BlankTransaction returns the defaults used by the create form:
// today's date and a success status.
func BlankTransaction() Transaction {
	return Transaction{Date: Today(), Status: StatusSuccess}
}
