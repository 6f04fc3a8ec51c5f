// Package thread renders a conversation log as terminal lines.
package thread

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/matheus3301/pairchat/internal/conversation"
)

// Line is one rendered message.
type Line struct {
	Own    bool
	Sender string
	Time   string
	Class  conversation.Class
	Label  string
	URL    string
}

// Renderer turns messages into lines from the point of view of Self.
type Renderer struct {
	Self string
	// Names maps participant ids to display names.
	Names map[string]string
	// Location is the zone timestamps are shown in; nil means local time.
	Location *time.Location
	// Width is the column own messages are right-aligned to. Zero disables
	// alignment.
	Width int
}

// Line renders one message.
func (r Renderer) Line(m conversation.Message) Line {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	rendered := conversation.Classify(m)
	own := m.SenderID == r.Self
	sender := "You"
	if !own {
		sender = r.Names[m.SenderID]
		if sender == "" {
			sender = m.SenderID
		}
	}
	return Line{
		Own:    own,
		Sender: Sanitize(sender),
		Time:   m.Timestamp.In(loc).Format("15:04"),
		Class:  rendered.Class,
		Label:  Sanitize(rendered.Label),
		URL:    rendered.URL,
	}
}

// String formats l without alignment.
func (l Line) String() string {
	marker := "<"
	if l.Own {
		marker = ">"
	}
	s := fmt.Sprintf("%s %s %s: %s", marker, l.Time, l.Sender, l.Label)
	if l.URL != "" && l.Class != conversation.ClassText {
		s += " (" + l.URL + ")"
	}
	return s
}

// Render writes every message of msgs in log order, one per line.
func (r Renderer) Render(w io.Writer, msgs []conversation.Message) error {
	for _, m := range msgs {
		s := r.Line(m).String()
		if r.Width > 0 && m.SenderID == r.Self {
			if pad := r.Width - utf8.RuneCountInString(s); pad > 0 {
				s = strings.Repeat(" ", pad) + s
			}
		}
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
