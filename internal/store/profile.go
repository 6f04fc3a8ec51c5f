package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
)

// CreateAccount inserts a new profile with its password hash. Returns
// ErrProfileExists when the id or email is taken.
func (db *DB) CreateAccount(ctx context.Context, a *Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	p := a.Profile
	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, phone, profile_image_url, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, strings.ToLower(p.Email), p.FullName, p.Phone, p.ProfileImageURL, a.PasswordHash, a.CreatedAt.UnixMilli())
	if isUniqueViolation(err) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// SetProfileImage updates the profile image URL of a participant.
func (db *DB) SetProfileImage(ctx context.Context, id, url string) error {
	res, err := db.ExecContext(ctx, `UPDATE profiles SET profile_image_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// GetAccountByEmail returns the account registered under email.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, email, full_name, phone, profile_image_url, password_hash, created_at
		FROM profiles WHERE email = ?`, strings.ToLower(email))
	return scanAccount(row)
}

// GetProfile returns the public profile of a participant.
func (db *DB) GetProfile(ctx context.Context, id string) (*conversation.Profile, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, email, full_name, phone, profile_image_url, password_hash, created_at
		FROM profiles WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, err
	}
	return &a.Profile, nil
}

// ListProfiles returns every profile except exclude, ordered by name.
// A non-empty query keeps only names containing it, case-insensitively.
func (db *DB) ListProfiles(ctx context.Context, exclude, query string) ([]conversation.Profile, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, email, full_name, phone, profile_image_url
		FROM profiles
		WHERE id != ? AND (? = '' OR instr(lower(full_name), lower(?)) > 0)
		ORDER BY full_name COLLATE NOCASE ASC, id ASC`,
		exclude, query, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []conversation.Profile
	for rows.Next() {
		var p conversation.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Phone, &p.ProfileImageURL); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ProfileCount returns the number of registered participants.
func (db *DB) ProfileCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	return count, err
}

func scanAccount(row *sql.Row) (*Account, error) {
	var (
		a       Account
		created int64
	)
	err := row.Scan(&a.Profile.ID, &a.Profile.Email, &a.Profile.FullName, &a.Profile.Phone,
		&a.Profile.ProfileImageURL, &a.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt = time.UnixMilli(created).UTC()
	return &a, nil
}
