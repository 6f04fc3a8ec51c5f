package store

import (
	"context"
	"fmt"
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
)

// MergeTyping overwrites one participant's flag in the typing document of id,
// leaving every other key untouched.
func (db *DB) MergeTyping(ctx context.Context, id conversation.ID, participant string, typing bool) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO typing_states (conversation_id, participant_id, typing, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(conversation_id, participant_id) DO UPDATE SET
			typing = excluded.typing,
			updated_at = excluded.updated_at`,
		string(id), participant, typing, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("merge typing %q/%q: %w", id, participant, err)
	}
	return nil
}

// ReadTyping returns the typing document of id. A missing document reads as
// an empty state.
func (db *DB) ReadTyping(ctx context.Context, id conversation.ID) (conversation.TypingState, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT participant_id, typing FROM typing_states WHERE conversation_id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	state := conversation.TypingState{}
	for rows.Next() {
		var (
			participant string
			typing      bool
		)
		if err := rows.Scan(&participant, &typing); err != nil {
			return nil, err
		}
		state[participant] = typing
	}
	return state, rows.Err()
}

// ClearTyping resets every raised typing flag of participant and returns the
// conversations whose document changed.
func (db *DB) ClearTyping(ctx context.Context, participant string) ([]conversation.ID, error) {
	rows, err := db.QueryContext(ctx, `
		UPDATE typing_states SET typing = 0, updated_at = ?
		WHERE participant_id = ? AND typing = 1
		RETURNING conversation_id`,
		time.Now().UnixMilli(), participant)
	if err != nil {
		return nil, fmt.Errorf("clear typing %q: %w", participant, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []conversation.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, conversation.ID(id))
	}
	return ids, rows.Err()
}
