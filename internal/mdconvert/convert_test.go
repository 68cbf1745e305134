package mdconvert

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"doc.pdf", false},
		{"doc.txt", false},
		{"doc.md", false},
		{"doc.html", false},
		{"doc.docx", false},
		{"doc.csv", false},
		{"doc.xyz", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("report.PDF") {
		t.Error("extension matching should be case-insensitive")
	}
	if IsSupportedExtension("archive.zip") {
		t.Error("zip should not be supported")
	}
}

func TestTextConverter_Paragraphs(t *testing.T) {
	in := "line one\nline two\n\n\nsecond para\n"
	got, err := (&TextConverter{}).Convert(strings.NewReader(in), "a.txt")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "line one\nline two\n\nsecond para"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownConverter_Passthrough(t *testing.T) {
	in := "# Title\n\nbody"
	got, err := (&MarkdownConverter{}).Convert(strings.NewReader(in), "a.md")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got != in {
		t.Errorf("markdown should pass through unchanged, got %q", got)
	}
}

func TestHTMLConverter(t *testing.T) {
	in := `<html><head><title>T</title><script>x()</script></head>
<body><h1>Heading</h1><p>First para.</p><ul><li>item one</li><li>item two</li></ul></body></html>`
	got, err := (&HTMLConverter{}).Convert(strings.NewReader(in), "a.html")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	for _, want := range []string{"# Heading", "First para.", "- item one", "- item two"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "x()") {
		t.Error("script content should be stripped")
	}
}

func TestCSVConverter_Table(t *testing.T) {
	in := "name,dose\naspirin,500mg\nibuprofen,200mg\n"
	got, err := (&CSVConverter{}).Convert(strings.NewReader(in), "a.csv")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 table lines, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "| name | dose |" {
		t.Errorf("header row = %q", lines[0])
	}
	if lines[1] != "| --- | --- |" {
		t.Errorf("separator row = %q", lines[1])
	}
	if lines[2] != "| aspirin | 500mg |" {
		t.Errorf("data row = %q", lines[2])
	}
}

func TestPagesToMarkdown(t *testing.T) {
	got := pagesToMarkdown([]string{" page one ", "", "page two"})
	if got != "page one\n\npage two" {
		t.Errorf("got %q", got)
	}
}
