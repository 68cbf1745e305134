// Package mdconvert converts source documents into Markdown text. It is the
// direct-conversion collaborator of the extraction cascade and also serves
// non-PDF inputs on its own.
package mdconvert

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Converter produces Markdown from raw document bytes.
type Converter interface {
	Convert(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can convert.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".docx": true,
	".csv":  true,
}

// ForFile returns the appropriate converter for a filename.
func ForFile(filename string) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFConverter{}, nil
	case ".txt":
		return &TextConverter{}, nil
	case ".md", ".markdown":
		return &MarkdownConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{}, nil
	case ".docx":
		return &DOCXConverter{}, nil
	case ".csv":
		return &CSVConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
