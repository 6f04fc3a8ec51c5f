package conversation

import (
	"fmt"
	"time"
)

// Kind tags how the text of a Message is interpreted.
type Kind string

const (
	KindText     Kind = "text"
	KindLocation Kind = "location"
	KindFile     Kind = "file"
	KindAudio    Kind = "audio"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindLocation, KindFile, KindAudio:
		return true
	}
	return false
}

// Message is one entry of a conversation log. The JSON field names are the
// stored document format and must not change.
type Message struct {
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	Type        Kind      `json:"type"`
	FileName    string    `json:"fileName,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks the invariants every stored message satisfies.
func (m Message) Validate() error {
	switch {
	case m.SenderID == "" || m.RecipientID == "":
		return fmt.Errorf("%w: sender and recipient are required", ErrInvalidMessage)
	case !ValidParticipant(m.SenderID) || !ValidParticipant(m.RecipientID):
		return fmt.Errorf("%w: participant ids must not contain %q", ErrInvalidMessage, Separator)
	case !m.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	case m.Text == "":
		return fmt.Errorf("%w: empty text", ErrInvalidMessage)
	case m.Type == KindFile && m.FileName == "":
		return fmt.Errorf("%w: file message without fileName", ErrInvalidMessage)
	case m.Type != KindFile && m.FileName != "":
		return fmt.Errorf("%w: fileName on %s message", ErrInvalidMessage, m.Type)
	}
	return nil
}

// Log is the document holding the whole message history of a conversation.
type Log struct {
	Messages []Message `json:"messages"`
}

// TypingState maps participant ids to their composing flag.
type TypingState map[string]bool

// Profile is the public record of a participant.
type Profile struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	ProfileImageURL string `json:"profileImageUrl"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
}
