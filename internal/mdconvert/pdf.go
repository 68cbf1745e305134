package mdconvert

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFConverter extracts the embedded text layer of a PDF and renders it as
// Markdown paragraphs, one block of pages separated by blank lines. It only
// sees text the PDF carries; scanned documents come out empty and are the
// cascade's problem.
type PDFConverter struct{}

func (c *PDFConverter) Convert(r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docmill-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	return pagesToMarkdown(strings.Split(text, "\f")), nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

// pagesToMarkdown joins non-empty page texts into a Markdown document with
// paragraph breaks between pages.
func pagesToMarkdown(pages []string) string {
	var out []string
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page != "" {
			out = append(out, page)
		}
	}
	return strings.Join(out, "\n\n")
}
