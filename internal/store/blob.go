package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PutBlob records object metadata. Without upsert an existing object yields
// ErrBlobExists.
func (db *DB) PutBlob(ctx context.Context, b *Blob, upsert bool) error {
	b.UpdatedAt = time.Now()
	q := `
		INSERT INTO blobs (bucket, name, content_type, size, owner_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if upsert {
		q += `
		ON CONFLICT(bucket, name) DO UPDATE SET
			content_type = excluded.content_type,
			size = excluded.size,
			owner_id = excluded.owner_id,
			updated_at = excluded.updated_at`
	}
	_, err := db.ExecContext(ctx, q, b.Bucket, b.Name, b.ContentType, b.Size, b.OwnerID, b.UpdatedAt.UnixMilli())
	if isUniqueViolation(err) {
		return ErrBlobExists
	}
	if err != nil {
		return fmt.Errorf("put blob %s/%s: %w", b.Bucket, b.Name, err)
	}
	return nil
}

// DeleteBlob removes object metadata. Missing objects are ignored.
func (db *DB) DeleteBlob(ctx context.Context, bucket, name string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM blobs WHERE bucket = ? AND name = ?`, bucket, name)
	return err
}

// GetBlob returns object metadata.
func (db *DB) GetBlob(ctx context.Context, bucket, name string) (*Blob, error) {
	var (
		b       Blob
		updated int64
	)
	err := db.QueryRowContext(ctx, `
		SELECT bucket, name, content_type, size, owner_id, updated_at
		FROM blobs WHERE bucket = ? AND name = ?`, bucket, name).
		Scan(&b.Bucket, &b.Name, &b.ContentType, &b.Size, &b.OwnerID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	b.UpdatedAt = time.UnixMilli(updated).UTC()
	return &b, nil
}
