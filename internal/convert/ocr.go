package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer performs optical character recognition on one rendered page
// image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractRecognizer wraps the Tesseract engine via gosseract. Tesseract
// must be installed on the worker host.
type TesseractRecognizer struct {
	// Language is the tesseract language spec, e.g. "eng" or "eng+fra".
	// Empty uses the engine default.
	Language string
}

// Recognize runs OCR over PNG/TIFF/JPEG image bytes and returns the
// recognized text with surrounding whitespace trimmed. The engine call itself
// is not interruptible; cancellation is honoured before it starts.
func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.Language != "" {
		if err := client.SetLanguage(t.Language); err != nil {
			return "", fmt.Errorf("set language %q: %w", t.Language, err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}
