package compose

import (
	"context"
	"io"

	"github.com/matheus3301/pairchat/internal/conversation"
)

// Buckets and content types used for uploads.
const (
	ChatFilesBucket = "chat_files"
	ProfilesBucket  = "profiles"
	AudioPrefix     = "audio_messages/"
	AudioMimeType   = "audio/m4a"
	DefaultMimeType = "application/octet-stream"
)

// Appender adds messages to a conversation log.
type Appender interface {
	Append(ctx context.Context, id conversation.ID, m conversation.Message) (conversation.Message, error)
}

// TypingPublisher publishes the local composing flag.
type TypingPublisher interface {
	SetTyping(id conversation.ID, participant string, typing bool)
}

// BlobStore uploads objects and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, bucket, name, contentType string, body io.Reader, upsert bool) (string, error)
}

// Position is a location fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// LocationProvider acquires location fixes behind a permission grant.
type LocationProvider interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (Position, error)
}

// AudioCapture records audio clips behind a permission grant.
type AudioCapture interface {
	RequestPermission(ctx context.Context) (bool, error)
	Start(ctx context.Context) (Recording, error)
}

// Recording is a clip being captured. Stop ends the capture and returns the
// clip content.
type Recording interface {
	Stop(ctx context.Context) (io.ReadCloser, error)
}

// PickedFile is a file chosen by the user for sending.
type PickedFile struct {
	Name     string
	MimeType string
	Body     io.Reader
}
