package convert

import (
	"log/slog"

	pdflib "github.com/ledongthuc/pdf"
)

// TextSource yields per-page extractable text for scan detection. Pages are
// 0-indexed.
type TextSource interface {
	PageCount() int
	PageText(page int) (string, error)
}

const (
	// scanSamplePages bounds how many leading pages the classifier reads.
	scanSamplePages = 3
	// scanCharThreshold is the average characters per sampled page below
	// which a document is treated as scanned.
	scanCharThreshold = 50
)

// IsScanned reports whether a document looks image-dominant: it samples the
// first min(3, pageCount) pages and compares the average extractable-text
// character count against the threshold. A cheap proxy, tuned to prefer a
// false "scanned" (extra OCR) over a false "not scanned" (lost content).
func IsScanned(src TextSource) bool {
	pages := src.PageCount()
	if pages == 0 {
		return true
	}
	sample := scanSamplePages
	if pages < sample {
		sample = pages
	}

	totalChars := 0
	for i := 0; i < sample; i++ {
		text, err := src.PageText(i)
		if err != nil {
			// Unreadable page contributes zero characters.
			continue
		}
		totalChars += len([]rune(text))
	}

	return totalChars/sample < scanCharThreshold
}

// DetectScanned opens the PDF at path and classifies it. Any failure to read
// the text layer classifies the document as scanned so the cascade proceeds
// to optical recognition instead of crashing on unreadable input.
func DetectScanned(path string, log *slog.Logger) bool {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		log.Warn("text layer unreadable, treating as scanned", "path", path, "error", err)
		return true
	}
	defer f.Close()

	return IsScanned(&pdfTextSource{reader: reader})
}

// pdfTextSource adapts a ledongthuc/pdf reader to TextSource.
type pdfTextSource struct {
	reader *pdflib.Reader
}

func (s *pdfTextSource) PageCount() int {
	return s.reader.NumPage()
}

func (s *pdfTextSource) PageText(page int) (string, error) {
	p := s.reader.Page(page + 1)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
