package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidEmailDomain is returned when a user is saved with an email outside the institution.
var ErrInvalidEmailDomain = errors.New("please use your institutional email address")

var validate = validator.New()

// User is the aggregate root for accounts.
// Email is the login identifier; there is no separate username.
// Password holds a bcrypt hash.
type User struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsActive  bool
	IsStaff   bool
	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail trims and lowercases an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsInstitutionalEmail reports whether email is a well-formed address whose domain is exactly domain.
func IsInstitutionalEmail(email, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
	if domain == "" {
		return false
	}
	if validate.Var(email, "required,email") != nil {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	return strings.EqualFold(email[at+1:], domain)
}

// Validate runs the institutional email gate. It is checked on every save.
func (u *User) Validate(domain string) error {
	if !IsInstitutionalEmail(u.Email, domain) {
		return ErrInvalidEmailDomain
	}
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
