package auth

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{8}$`)
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// ValidationError reports the first invalid field of a form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Registration is the sign-up form.
type Registration struct {
	FullName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Normalize trims surrounding space from the identifying fields.
func (r Registration) Normalize() Registration {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

// Validate checks the form in field order and reports the first problem.
func (r Registration) Validate() error {
	switch {
	case r.FullName == "" || r.Email == "" || r.Phone == "" || r.Password == "" || r.ConfirmPassword == "":
		return &ValidationError{Field: "form", Message: "please fill in all fields"}
	case !emailRe.MatchString(r.Email):
		return &ValidationError{Field: "email", Message: "please enter a valid email address"}
	case !phoneRe.MatchString(r.Phone):
		return &ValidationError{Field: "phone", Message: "please enter a valid phone number"}
	case r.Password != r.ConfirmPassword:
		return &ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	case len(r.Password) < MinPasswordLength:
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}

// ValidateLogin checks the sign-in form.
func ValidateLogin(email, password string) error {
	switch {
	case strings.TrimSpace(email) == "" || password == "":
		return &ValidationError{Field: "form", Message: "please fill in all fields"}
	case !emailRe.MatchString(strings.TrimSpace(email)):
		return &ValidationError{Field: "email", Message: "please enter a valid email"}
	}
	return nil
}
