package core

import (
	"net/mail"
	"sort"
	"strings"
)

// Validation rule names, used as the per-field error values. Templates
// map them to user-facing messages; tests assert on them directly.
const (
	RuleRequired = "required"
	RuleMin      = "min"
	RuleMax      = "max"
	RuleEmail    = "email"
	RuleSame     = "same"
	RuleUnique   = "unique"
	RuleIn       = "in"
	RuleNumeric  = "numeric"
	RuleDate     = "date"
	RuleImage    = "image"
	// RuleAuth marks a login attempt whose credentials did not match.
	RuleAuth = "auth"
)

// FieldErrors maps a form field name to the first validation rule it
// failed. An empty map means the input is valid.
type FieldErrors map[string]string

// Add records a failure for a field unless one is already present; the
// first broken rule wins, matching how forms re-render one message per
// field.
func (fe FieldErrors) Add(field, rule string) {
	if _, ok := fe[field]; !ok {
		fe[field] = rule
	}
}

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Error renders the failures as "field: rule" pairs, sorted by field for
// stable output.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// ValidEmail reports whether s looks like a single valid address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// RegistrationForm holds raw register-form input.
type RegistrationForm struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Validate checks the registration rules: name required min 10, email
// required and well formed, password required min 6 and matching the
// confirmation. Email uniqueness is a store concern and is layered on by
// the caller.
func (f RegistrationForm) Validate() FieldErrors {
	fe := FieldErrors{}
	name := strings.TrimSpace(f.Name)
	if name == "" {
		fe.Add("name", RuleRequired)
	} else if len(name) < 10 {
		fe.Add("name", RuleMin)
	}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		fe.Add("email", RuleRequired)
	} else if !ValidEmail(email) {
		fe.Add("email", RuleEmail)
	}
	if f.Password == "" {
		fe.Add("password", RuleRequired)
	} else if len(f.Password) < 6 {
		fe.Add("password", RuleMin)
	} else if f.Password != f.PasswordConfirmation {
		fe.Add("password", RuleSame)
	}
	return fe
}

// LoginForm holds raw login-form input.
type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() FieldErrors {
	fe := FieldErrors{}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		fe.Add("email", RuleRequired)
	} else if !ValidEmail(email) {
		fe.Add("email", RuleEmail)
	}
	if f.Password == "" {
		fe.Add("password", RuleRequired)
	}
	return fe
}

// TransactionForm holds raw edit-modal input for a transaction. Field
// error keys carry the "editing." prefix the edit form uses.
type TransactionForm struct {
	Title  string
	Amount string
	Status string
	Date   string
}

// Validate checks the edit rules and, when they all pass, returns the
// parsed values. On failure the returned FieldErrors is non-empty and the
// Transaction must be ignored.
func (f TransactionForm) Validate() (Transaction, FieldErrors) {
	fe := FieldErrors{}
	var tx Transaction

	title := strings.TrimSpace(f.Title)
	if title == "" {
		fe.Add("editing.title", RuleRequired)
	} else if len(title) < 3 {
		fe.Add("editing.title", RuleMin)
	}
	tx.Title = title

	if strings.TrimSpace(f.Amount) == "" {
		fe.Add("editing.amount", RuleRequired)
	} else if cents, err := ParseDecimalToCents(f.Amount); err != nil {
		fe.Add("editing.amount", RuleNumeric)
	} else {
		tx.Amount = Money{Cents: cents}
	}

	if strings.TrimSpace(f.Status) == "" {
		fe.Add("editing.status", RuleRequired)
	} else if st, err := ParseStatus(f.Status); err != nil {
		fe.Add("editing.status", RuleIn)
	} else {
		tx.Status = st
	}

	if strings.TrimSpace(f.Date) == "" {
		fe.Add("editing.date", RuleRequired)
	} else if d, err := ParseDate(f.Date); err != nil {
		fe.Add("editing.date", RuleDate)
	} else {
		tx.Date = d
	}

	return tx, fe
}

// ProfileForm holds raw profile-form input. Avatar checks apply only when
// an upload is present.
type ProfileForm struct {
	Username string
	About    string
	Birthday string

	AvatarSize        int64
	AvatarContentType string
}

// MaxAvatarBytes is the upload limit for profile avatars.
const MaxAvatarBytes = 1 << 20

func (f ProfileForm) Validate() FieldErrors {
	fe := FieldErrors{}
	if len(strings.TrimSpace(f.Username)) > 24 {
		fe.Add("username", RuleMax)
	}
	if len(strings.TrimSpace(f.About)) > 124 {
		fe.Add("about", RuleMax)
	}
	if strings.TrimSpace(f.Birthday) != "" {
		if _, err := ParseDate(f.Birthday); err != nil {
			fe.Add("birthday", RuleDate)
		}
	}
	if f.AvatarSize > 0 {
		if !strings.HasPrefix(f.AvatarContentType, "image/") {
			fe.Add("avatar", RuleImage)
		} else if f.AvatarSize > MaxAvatarBytes {
			fe.Add("avatar", RuleMax)
		}
	}
	return fe
}
