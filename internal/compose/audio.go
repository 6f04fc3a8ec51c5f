package compose

import (
	"context"
	"fmt"

	"github.com/matheus3301/pairchat/internal/conversation"
	"go.uber.org/zap"
)

// AudioPhase is the externally visible state of the audio recorder.
type AudioPhase int

const (
	AudioIdle AudioPhase = iota
	AudioRecording
)

func (p AudioPhase) String() string {
	if p == AudioRecording {
		return "recording"
	}
	return "idle"
}

// audioState is one state of the recorder. toggle performs the transition
// and returns the next state, which is valid even when err is non-nil.
type audioState interface {
	phase() AudioPhase
	toggle(ctx context.Context, c *Composer) (audioState, error)
}

type idle struct{}

type recording struct {
	rec Recording
}

func (idle) phase() AudioPhase      { return AudioIdle }
func (recording) phase() AudioPhase { return AudioRecording }

func (idle) toggle(ctx context.Context, c *Composer) (audioState, error) {
	capture := c.deps.Audio
	if capture == nil {
		return idle{}, conversation.ErrPermissionDenied
	}
	if err := grant(ctx, capture.RequestPermission); err != nil {
		return idle{}, err
	}
	rec, err := capture.Start(ctx)
	if err != nil {
		return idle{}, fmt.Errorf("start recording: %w", err)
	}
	return recording{rec: rec}, nil
}

// toggle stops the clip, uploads and sends it. Any failure discards the clip.
func (r recording) toggle(ctx context.Context, c *Composer) (audioState, error) {
	clip, err := r.rec.Stop(ctx)
	if err != nil {
		return idle{}, fmt.Errorf("stop recording: %w", err)
	}
	defer func() { _ = clip.Close() }()

	name := AudioObjectName(c.deps.Now())
	url, err := c.upload(ctx, name, AudioMimeType, PickedFile{Name: name, Body: clip}, true)
	if err != nil {
		return idle{}, err
	}
	if err := c.send(ctx, conversation.KindAudio, url, ""); err != nil {
		c.deps.Logger.Warn("audio uploaded but not sent", zap.String("url", url), zap.Error(err))
		return idle{}, err
	}
	return idle{}, nil
}

// ToggleAudio starts recording when idle, and when recording stops, uploads
// and sends the clip. It returns the phase reached.
func (c *Composer) ToggleAudio(ctx context.Context) (AudioPhase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.audio.toggle(ctx, c)
	c.audio = next
	return next.phase(), err
}

// Phase returns the current recorder phase.
func (c *Composer) Phase() AudioPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audio.phase()
}
