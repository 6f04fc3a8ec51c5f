// Package compose builds outgoing messages of every kind and sends them to a
// conversation.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
	"go.uber.org/zap"
)

// Deps are the collaborators of a Composer. Chat and Typing are required;
// a nil capability makes the matching send fail with ErrPermissionDenied.
type Deps struct {
	Chat     Appender
	Typing   TypingPublisher
	Blobs    BlobStore
	Location LocationProvider
	Audio    AudioCapture
	Now      func() time.Time
	// OnSent runs once after every successful append.
	OnSent func()
	Logger *zap.Logger
}

// Composer sends messages from sender to recipient. Operations are
// serialized.
type Composer struct {
	sender    string
	recipient string
	id        conversation.ID
	deps      Deps

	mu    sync.Mutex
	input string
	audio audioState
}

// New creates a composer bound to the pair (sender, recipient).
func New(sender, recipient string, deps Deps) *Composer {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.OnSent == nil {
		deps.OnSent = func() {}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Composer{
		sender:    sender,
		recipient: recipient,
		id:        conversation.NewID(sender, recipient),
		deps:      deps,
		audio:     idle{},
	}
}

// ID returns the conversation the composer writes to.
func (c *Composer) ID() conversation.ID {
	return c.id
}

// Input returns the current text buffer.
func (c *Composer) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the text buffer and publishes whether it is non-empty
// as the typing flag.
func (c *Composer) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
	c.deps.Typing.SetTyping(c.id, c.sender, len(text) > 0)
}

// SendText sends the buffer as a text message. A blank buffer is ignored.
// On failure the buffer is kept.
func (c *Composer) SendText(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(c.input) == "" {
		return nil
	}
	if err := c.send(ctx, conversation.KindText, c.input, ""); err != nil {
		return err
	}
	c.input = ""
	c.deps.Typing.SetTyping(c.id, c.sender, false)
	return nil
}

// SendLocation sends the current position as a map link.
func (c *Composer) SendLocation(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	loc := c.deps.Location
	if loc == nil {
		return conversation.ErrPermissionDenied
	}
	if err := grant(ctx, loc.RequestPermission); err != nil {
		return err
	}
	pos, err := loc.CurrentPosition(ctx)
	if err != nil {
		return fmt.Errorf("current position: %w", err)
	}
	return c.send(ctx, conversation.KindLocation, LocationURL(pos), "")
}

// LocationURL renders a position as a map query link.
func LocationURL(p Position) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
		strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Longitude, 'f', -1, 64))
}

// SendFile uploads f and sends a link to it.
func (c *Composer) SendFile(ctx context.Context, f PickedFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Name == "" {
		return fmt.Errorf("%w: file without name", conversation.ErrInvalidMessage)
	}
	mime := f.MimeType
	if mime == "" {
		mime = DefaultMimeType
	}
	name := FileObjectName(mime, c.sender, c.deps.Now())
	url, err := c.upload(ctx, name, mime, f, false)
	if err != nil {
		return err
	}
	return c.send(ctx, conversation.KindFile, url, f.Name)
}

// FileObjectName is the storage name of a file sent by sender at t.
func FileObjectName(mimeType, sender string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%d", mimeType, sender, t.UnixMilli())
}

// AudioObjectName is the storage name of a clip uploaded at t.
func AudioObjectName(t time.Time) string {
	return AudioPrefix + t.UTC().Format("2006-01-02T15:04:05.000Z07:00") + ".m4a"
}

// ProfileObjectName is the storage name of the picture uid uploads at t.
func ProfileObjectName(uid string, t time.Time) string {
	return fmt.Sprintf("profile-%s-%d.jpg", uid, t.UnixMilli())
}

func (c *Composer) upload(ctx context.Context, name, mime string, f PickedFile, upsert bool) (string, error) {
	if c.deps.Blobs == nil {
		return "", fmt.Errorf("%w: no blob store", conversation.ErrUploadFailed)
	}
	url, err := c.deps.Blobs.Upload(ctx, ChatFilesBucket, name, mime, f.Body, upsert)
	if err != nil {
		c.deps.Logger.Warn("upload failed", zap.String("object", name), zap.Error(err))
		return "", fmt.Errorf("%w: %w", conversation.ErrUploadFailed, err)
	}
	return url, nil
}

// send appends one message and fires OnSent.
func (c *Composer) send(ctx context.Context, kind conversation.Kind, text, fileName string) error {
	m := conversation.Message{
		SenderID:    c.sender,
		RecipientID: c.recipient,
		Text:        text,
		Type:        kind,
		FileName:    fileName,
		Timestamp:   c.deps.Now(),
	}
	if _, err := c.deps.Chat.Append(ctx, c.id, m); err != nil {
		return err
	}
	c.deps.OnSent()
	return nil
}

func grant(ctx context.Context, request func(context.Context) (bool, error)) error {
	ok, err := request(ctx)
	if err != nil && !errors.Is(err, conversation.ErrPermissionDenied) {
		return fmt.Errorf("request permission: %w", err)
	}
	if err != nil || !ok {
		return conversation.ErrPermissionDenied
	}
	return nil
}
