// Package device provides command-line stand-ins for the location and audio
// capabilities of a phone: fixes and clips come from flags and files, and
// the permission outcome is configured rather than prompted.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/matheus3301/pairchat/internal/compose"
)

// ErrNoFix is returned when no position was configured.
var ErrNoFix = errors.New("no position available")

// Location serves a fixed position.
type Location struct {
	Granted  bool
	Position *compose.Position
}

var _ compose.LocationProvider = Location{}

func (l Location) RequestPermission(context.Context) (bool, error) {
	return l.Granted, nil
}

func (l Location) CurrentPosition(ctx context.Context) (compose.Position, error) {
	if err := ctx.Err(); err != nil {
		return compose.Position{}, err
	}
	if l.Position == nil {
		return compose.Position{}, ErrNoFix
	}
	return *l.Position, nil
}

// ParsePosition reads "lat,lon" in decimal degrees.
func ParsePosition(s string) (compose.Position, error) {
	latText, lonText, ok := strings.Cut(s, ",")
	if !ok {
		return compose.Position{}, fmt.Errorf("position %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return compose.Position{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil {
		return compose.Position{}, fmt.Errorf("longitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return compose.Position{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return compose.Position{}, fmt.Errorf("longitude %v out of range", lon)
	}
	return compose.Position{Latitude: lat, Longitude: lon}, nil
}

// FileAudio "records" by handing back the content of an existing file when
// the recording stops.
type FileAudio struct {
	Granted bool
	Path    string
}

var _ compose.AudioCapture = FileAudio{}

func (a FileAudio) RequestPermission(context.Context) (bool, error) {
	return a.Granted, nil
}

// Start checks the clip exists so a bad path fails before recording begins.
func (a FileAudio) Start(context.Context) (compose.Recording, error) {
	info, err := os.Stat(a.Path)
	if err != nil {
		return nil, fmt.Errorf("audio source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("audio source %s is a directory", a.Path)
	}
	return &fileRecording{path: a.Path}, nil
}

type fileRecording struct {
	path    string
	mu      sync.Mutex
	stopped bool
}

var errStopped = errors.New("recording already stopped")

func (r *fileRecording) Stop(ctx context.Context) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return nil, errStopped
	}
	r.stopped = true
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(r.path)
}
