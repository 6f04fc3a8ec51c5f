package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
)

// EnsureLog creates an empty log for id if none exists. It never touches an
// existing log. Returns true when the log was created.
func (db *DB) EnsureLog(ctx context.Context, id conversation.ID) (bool, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO conversation_logs (id, created_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING`,
		string(id), time.Now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("ensure log %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendMessage adds m to the end of the log in a single transaction.
// With create set the log is created when absent; otherwise a missing log
// yields ErrLogNotFound. Appending an entry identical to one already in the
// log is a no-op, matching array-union semantics.
func (db *DB) AppendMessage(ctx context.Context, id conversation.ID, m conversation.Message, create bool) (*AppendResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	result := &AppendResult{Message: m}

	if create {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO conversation_logs (id, created_at) VALUES (?, ?)
			ON CONFLICT(id) DO NOTHING`,
			string(id), now)
		if err != nil {
			return nil, fmt.Errorf("create log %q: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		result.Created = n > 0
	} else {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM conversation_logs WHERE id = ?`, string(id)).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLogNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("lookup log %q: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO log_messages (conversation_id, digest, sender_id, recipient_id, text, type, file_name, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id, digest) DO NOTHING`,
		string(id), digest(m), m.SenderID, m.RecipientID, m.Text, string(m.Type), m.FileName, m.Timestamp.UnixMilli(), now)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	result.Appended = n > 0

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// ReadLog returns the messages of a log in append order. exists is false
// when the log was never created; messages is then empty.
func (db *DB) ReadLog(ctx context.Context, id conversation.ID) (messages []conversation.Message, exists bool, err error) {
	var one int
	err = db.QueryRowContext(ctx, `SELECT 1 FROM conversation_logs WHERE id = ?`, string(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return []conversation.Message{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup log %q: %w", id, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT sender_id, recipient_id, text, type, file_name, timestamp
		FROM log_messages
		WHERE conversation_id = ?
		ORDER BY seq ASC`, string(id))
	if err != nil {
		return nil, true, err
	}
	defer func() { _ = rows.Close() }()

	messages = []conversation.Message{}
	for rows.Next() {
		var (
			m    conversation.Message
			kind string
			ts   int64
		)
		if err := rows.Scan(&m.SenderID, &m.RecipientID, &m.Text, &kind, &m.FileName, &ts); err != nil {
			return nil, true, err
		}
		m.Type = conversation.Kind(kind)
		m.Timestamp = time.UnixMilli(ts).UTC()
		messages = append(messages, m)
	}
	return messages, true, rows.Err()
}

// LogCount returns the number of conversation logs.
func (db *DB) LogCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_logs`).Scan(&count)
	return count, err
}

// MessageCount returns the number of messages across all logs.
func (db *DB) MessageCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_messages`).Scan(&count)
	return count, err
}

// digest identifies an entry by its full content at storage precision.
func digest(m conversation.Message) string {
	h := sha256.New()
	for _, field := range []string{m.SenderID, m.RecipientID, string(m.Type), m.FileName, strconv.FormatInt(m.Timestamp.UnixMilli(), 10), m.Text} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
