package conversation

import "testing"

func TestClassify(t *testing.T) {
	const url = "https://cdn.example/x"
	tests := []struct {
		name  string
		msg   Message
		class Class
		label string
	}{
		{"text", Message{Type: KindText, Text: "hello"}, ClassText, "hello"},
		{"location", Message{Type: KindLocation, Text: "https://www.google.com/maps?q=1.29,103.85"}, ClassLocation, "Shared Location"},
		{"audio", Message{Type: KindAudio, Text: url}, ClassAudio, "Audio Message"},
		{"jpg", Message{Type: KindFile, Text: url, FileName: "cat.jpg"}, ClassImage, "cat.jpg"},
		{"upper JPEG", Message{Type: KindFile, Text: url, FileName: "CAT.JPEG"}, ClassImage, "CAT.JPEG"},
		{"png", Message{Type: KindFile, Text: url, FileName: "a.b.png"}, ClassImage, "a.b.png"},
		{"gif", Message{Type: KindFile, Text: url, FileName: "x.gif"}, ClassImage, "x.gif"},
		{"pdf", Message{Type: KindFile, Text: url, FileName: "report.pdf"}, ClassPDF, "PDF: report.pdf"},
		{"other", Message{Type: KindFile, Text: url, FileName: "notes.txt"}, ClassFile, "File: notes.txt"},
		{"no extension", Message{Type: KindFile, Text: url, FileName: "README"}, ClassFile, "File: README"},
		{"webp is not inline", Message{Type: KindFile, Text: url, FileName: "x.webp"}, ClassFile, "File: x.webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.msg)
			if got.Class != tt.class {
				t.Errorf("class = %q, want %q", got.Class, tt.class)
			}
			if got.Label != tt.label {
				t.Errorf("label = %q, want %q", got.Label, tt.label)
			}
			if tt.class != ClassText && got.URL != tt.msg.Text {
				t.Errorf("url = %q, want %q", got.URL, tt.msg.Text)
			}
		})
	}
}
