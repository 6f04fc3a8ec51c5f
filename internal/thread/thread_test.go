package thread

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matheus3301/pairchat/internal/conversation"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"skin tone", "👍🏻", "👍"},
		{"zwj family", "👨‍👩‍👧", "👨👩👧"},
		{"variation selector", "❤️", "❤"},
		{"escape sequence", "a\x1b[2Jb", "a[2Jb"},
		{"newline", "two\nlines", "two lines"},
		{"tab kept", "a\tb", "a\tb"},
		{"invalid utf8", "a\xffb", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	ts := time.Date(2024, 6, 1, 8, 30, 15, 0, time.UTC)
	r := Renderer{Self: "u1", Names: map[string]string{"u2": "Bob"}, Location: time.UTC}

	tests := []struct {
		name string
		msg  conversation.Message
		want Line
	}{
		{
			"own text",
			conversation.Message{SenderID: "u1", RecipientID: "u2", Text: "hi", Type: conversation.KindText, Timestamp: ts},
			Line{Own: true, Sender: "You", Time: "08:30", Class: conversation.ClassText, Label: "hi"},
		},
		{
			"peer pdf",
			conversation.Message{SenderID: "u2", RecipientID: "u1", Text: "http://x/doc", Type: conversation.KindFile, FileName: "doc.PDF", Timestamp: ts},
			Line{Sender: "Bob", Time: "08:30", Class: conversation.ClassPDF, Label: "PDF: doc.PDF", URL: "http://x/doc"},
		},
		{
			"unknown peer location",
			conversation.Message{SenderID: "u3", RecipientID: "u1", Text: "https://www.google.com/maps?q=1,2", Type: conversation.KindLocation, Timestamp: ts},
			Line{Sender: "u3", Time: "08:30", Class: conversation.ClassLocation, Label: "Shared Location", URL: "https://www.google.com/maps?q=1,2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, r.Line(tt.msg)); diff != "" {
				t.Errorf("Line() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderAlignsOwnMessages(t *testing.T) {
	ts := time.Date(2024, 6, 1, 20, 5, 0, 0, time.UTC)
	msgs := []conversation.Message{
		{SenderID: "u2", RecipientID: "u1", Text: "hey", Type: conversation.KindText, Timestamp: ts},
		{SenderID: "u1", RecipientID: "u2", Text: "http://x/a.m4a", Type: conversation.KindAudio, Timestamp: ts},
	}
	var b strings.Builder
	r := Renderer{Self: "u1", Names: map[string]string{"u2": "Bob"}, Location: time.UTC, Width: 50}
	if err := r.Render(&b, msgs); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "< 20:05 Bob: hey" {
		t.Errorf("peer line = %q", lines[0])
	}
	own := "> 20:05 You: Audio Message (http://x/a.m4a)"
	if strings.TrimLeft(lines[1], " ") != own || len(lines[1]) != 50 {
		t.Errorf("own line = %q, want %q right-aligned to 50", lines[1], own)
	}
}
