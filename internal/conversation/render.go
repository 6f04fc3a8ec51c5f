package conversation

import "strings"

// Class is the rendering class of a message.
type Class string

const (
	ClassText     Class = "text"
	ClassLocation Class = "location"
	ClassImage    Class = "image"
	ClassPDF      Class = "pdf"
	ClassFile     Class = "file"
	ClassAudio    Class = "audio"
)

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// Render describes how a message is displayed. Label is the visible text;
// URL is set for classes that open or embed a resource.
type Render struct {
	Class Class
	Label string
	URL   string
}

// Classify derives the rendering of m from its type and, for files, from the
// extension of its file name.
func Classify(m Message) Render {
	switch m.Type {
	case KindLocation:
		return Render{Class: ClassLocation, Label: "Shared Location", URL: m.Text}
	case KindAudio:
		return Render{Class: ClassAudio, Label: "Audio Message", URL: m.Text}
	case KindFile:
		ext := Extension(m.FileName)
		switch {
		case imageExtensions[ext]:
			return Render{Class: ClassImage, Label: m.FileName, URL: m.Text}
		case ext == "pdf":
			return Render{Class: ClassPDF, Label: "PDF: " + m.FileName, URL: m.Text}
		default:
			return Render{Class: ClassFile, Label: "File: " + m.FileName, URL: m.Text}
		}
	default:
		return Render{Class: ClassText, Label: m.Text}
	}
}

// Extension returns the lower-cased text after the last dot of name, or the
// whole lower-cased name when it has no dot.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
