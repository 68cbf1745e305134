package convert

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// Renderer opens documents for rasterization and the renderer's built-in
// text pass.
type Renderer interface {
	Open(path string) (RenderedDocument, error)
}

// RenderedDocument is one open document. Pages are 0-indexed.
type RenderedDocument interface {
	PageCount() int
	// PageText runs the renderer's own text recognition over a page.
	PageText(page int) (string, error)
	// RenderPage rasterizes a page to PNG at the configured DPI.
	RenderPage(page int) ([]byte, error)
	Close() error
}

// FitzRenderer rasterizes PDFs through MuPDF.
type FitzRenderer struct {
	dpi float64
}

// NewFitzRenderer creates a renderer. dpi <= 0 selects the 300 DPI default
// used for OCR-quality rasters.
func NewFitzRenderer(dpi float64) *FitzRenderer {
	if dpi <= 0 {
		dpi = 300
	}
	return &FitzRenderer{dpi: dpi}
}

func (r *FitzRenderer) Open(path string) (RenderedDocument, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return &fitzDocument{doc: doc, dpi: r.dpi}, nil
}

type fitzDocument struct {
	doc *fitz.Document
	dpi float64
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) PageText(page int) (string, error) {
	return d.doc.Text(page)
}

func (d *fitzDocument) RenderPage(page int) ([]byte, error) {
	img, err := d.doc.ImageDPI(page, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
