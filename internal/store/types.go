package store

import (
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
)

// AppendResult reports what an append changed.
type AppendResult struct {
	Message  conversation.Message
	Created  bool // the log did not exist and was created by this append
	Appended bool // false when an identical entry was already present
}

// Account is a stored profile together with its credentials.
type Account struct {
	Profile      conversation.Profile
	PasswordHash string
	CreatedAt    time.Time
}

// Blob is the metadata of a stored object.
type Blob struct {
	Bucket      string
	Name        string
	ContentType string
	Size        int64
	OwnerID     string
	UpdatedAt   time.Time
}
