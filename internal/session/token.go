package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var (
	// ErrNotLoggedIn is returned when a session has no stored token.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrInvalidName is returned for session names that cannot be used as a
	// directory name.
	ErrInvalidName = errors.New("invalid session name")
)

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name matches ^[a-z0-9_-]{1,64}$.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidName, name, nameRegexp)
	}
	return nil
}

// SaveToken stores the login token of a session.
func SaveToken(name, token string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := EnsureDir(name); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(TokenPath(name), []byte(token+"\n"), 0600)
}

// LoadToken returns the stored token or ErrNotLoggedIn.
func LoadToken(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(TokenPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken forgets the token of a session. Clearing twice is not an error.
func ClearToken(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(TokenPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
