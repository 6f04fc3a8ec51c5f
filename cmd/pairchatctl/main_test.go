package main

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/pairchat/internal/presence"
)

func TestRenderQR(t *testing.T) {
	out, err := renderQR("4b1d2c1e-7f1a-4a55-9e55-0a4f6f3f9d10")
	if err != nil {
		t.Fatalf("renderQR() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("got %d lines, want a full code", len(lines))
	}
	width := len([]rune(lines[0]))
	for i, l := range lines {
		if n := len([]rune(l)); n != width {
			t.Errorf("line %d has %d runes, want %d", i, n, width)
		}
	}
	if !strings.ContainsAny(out, "█▀▄") {
		t.Error("no dark modules rendered")
	}
}

func TestMimeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"photo.png", "image/png"},
		{"report.pdf", "application/pdf"},
		{"notes.txt", "text/plain"},
		{"blob.unknownext", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := mimeFor(tt.path); got != tt.want {
				t.Errorf("mimeFor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"secret\n", "secret", false},
		{"secret\r\n", "secret", false},
		{"secret", "secret", false},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := readLine(strings.NewReader(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("readLine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("readLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLastActive(t *testing.T) {
	tests := []struct {
		name   string
		status presence.Status
		want   string
	}{
		{"online", presence.Status{State: presence.StateConnected}, "online"},
		{"never", presence.Status{State: presence.StateDisconnected}, "never seen"},
		{"seen", presence.Status{State: presence.StateDisconnected, LastActive: time.Now()}, "last seen "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastActive(tt.status); !strings.HasPrefix(got, tt.want) {
				t.Errorf("lastActive() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}
