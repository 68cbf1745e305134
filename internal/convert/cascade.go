// Package convert turns source PDFs into Markdown through a cascade of
// increasingly expensive extraction strategies: direct text-layer
// conversion, the renderer's text pass, external per-page OCR, and finally
// heuristic structuring of raw recognized text.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docmill/docmill/internal/mdconvert"
	"github.com/docmill/docmill/internal/mdformat"
)

// SufficiencyThreshold is the minimum number of significant characters a
// strategy must produce to be accepted.
const SufficiencyThreshold = 100

// pageDelimiter separates per-page OCR text in strategy-3 output.
const pageDelimiter = "\n\f\n"

// Strategy names, reported on the conversion result and in logs.
const (
	StrategyDirect       = "direct"
	StrategyRenderedText = "rendered_text"
	StrategyExternalOCR  = "external_ocr"
	StrategyStructured   = "structured_ocr"
	StrategyPlaceholder  = "placeholder"
)

// ErrNoConverter indicates the direct Markdown-conversion collaborator is
// absent. This is the one fatal condition: without it no strategy can run.
var ErrNoConverter = errors.New("markdown converter unavailable")

// Result is the outcome of one cascade run.
type Result struct {
	Markdown string
	Strategy string
	Scanned  bool
	Quality  Quality
}

// Strategy is one extraction attempt. Run returns Markdown; an error means
// the strategy yields nothing and the driver moves on. A Final strategy is a
// last-resort recovery: any non-empty output is accepted even below the
// sufficiency threshold, since the alternative is the placeholder.
type Strategy struct {
	Name  string
	Final bool
	Run   func(ctx context.Context) (string, error)
}

// Cascade drives the fallback strategies. A nil renderer or recognizer
// disables the strategies that need it; they then report as unavailable and
// yield empty output.
type Cascade struct {
	renderer   Renderer
	recognizer Recognizer
	log        *slog.Logger
}

func NewCascade(renderer Renderer, recognizer Recognizer, log *slog.Logger) *Cascade {
	return &Cascade{renderer: renderer, recognizer: recognizer, log: log}
}

// Convert produces Markdown for the PDF at path. It always returns a
// document: when every strategy falls short the result is a placeholder
// naming the source file. The only errors are a missing direct converter and
// context cancellation.
func (c *Cascade) Convert(ctx context.Context, path string) (*Result, error) {
	filename := filepath.Base(path)

	direct, err := mdconvert.ForFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoConverter)
	}

	scanned := DetectScanned(path, c.log)
	c.log.Info("classified document", "file", filename, "scanned", scanned)

	// Raw per-page OCR text survives strategy 3 so strategy 4 can structure
	// it without re-running the engine.
	var ocrPages []string

	strategies := []Strategy{
		{Name: StrategyDirect, Run: func(ctx context.Context) (string, error) {
			return c.convertFile(direct, path, filename)
		}},
		{Name: StrategyRenderedText, Run: func(ctx context.Context) (string, error) {
			return c.renderedTextPass(ctx, path)
		}},
		{Name: StrategyExternalOCR, Run: func(ctx context.Context) (string, error) {
			pages, err := c.recognizePages(ctx, path)
			if err != nil {
				return "", err
			}
			ocrPages = pages
			return joinPages(pages), nil
		}},
		{Name: StrategyStructured, Final: true, Run: func(ctx context.Context) (string, error) {
			return structurePages(ocrPages)
		}},
	}

	markdown, strategy, err := c.runStrategies(ctx, strategies, filename)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Markdown: markdown,
		Strategy: strategy,
		Scanned:  scanned,
	}
	result.Quality = c.scoreResult(path, markdown)
	c.log.Info("conversion complete",
		"file", filename,
		"strategy", strategy,
		"chars", len(markdown),
		"chars_per_page", result.Quality.CharsPerPage,
		"wordlike_ratio", result.Quality.WordlikeRatio,
	)
	return result, nil
}

// runStrategies tries each strategy in order and returns the first
// sufficient output, or the placeholder when all fall short.
func (c *Cascade) runStrategies(ctx context.Context, strategies []Strategy, filename string) (string, string, error) {
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		markdown, err := s.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", "", err
			}
			c.log.Warn("extraction strategy failed", "strategy", s.Name, "file", filename, "error", err)
			continue
		}
		if sufficient(markdown) || (s.Final && strings.TrimSpace(markdown) != "") {
			return markdown, s.Name, nil
		}
		c.log.Info("extraction strategy insufficient",
			"strategy", s.Name, "file", filename, "chars", len(strings.TrimSpace(markdown)))
	}
	c.log.Warn("all extraction strategies exhausted", "file", filename)
	return placeholderMarkdown(filename), StrategyPlaceholder, nil
}

func sufficient(markdown string) bool {
	return len([]rune(strings.TrimSpace(markdown))) >= SufficiencyThreshold
}

func (c *Cascade) convertFile(conv mdconvert.Converter, path, filename string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer f.Close()
	return conv.Convert(f, filename)
}

// renderedTextPass re-renders every page through the rasterizer's built-in
// text recognition, writes the recognized text to a derived temporary
// document, and re-runs the direct conversion pipeline on it. The temp file
// is removed on every exit path.
func (c *Cascade) renderedTextPass(ctx context.Context, path string) (string, error) {
	if c.renderer == nil {
		return "", errors.New("renderer unavailable")
	}
	doc, err := c.renderer.Open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.PageText(i)
		if err != nil {
			c.log.Warn("renderer text pass failed for page", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", nil
	}

	tmp, err := os.CreateTemp("", "docmill-rendered-*.txt")
	if err != nil {
		return "", fmt.Errorf("create derived document: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			c.log.Warn("derived document cleanup failed", "path", tmpPath, "error", err)
		}
	}()

	if _, err := tmp.WriteString(strings.Join(pages, pageDelimiter)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write derived document: %w", err)
	}
	tmp.Close()

	conv, err := mdconvert.ForFile(tmpPath)
	if err != nil {
		return "", err
	}
	return c.convertFile(conv, tmpPath, filepath.Base(tmpPath))
}

// recognizePages renders each page at OCR resolution and runs the external
// recognition engine over it. The returned slice has one entry per page;
// failed pages are empty strings so page numbering stays intact.
func (c *Cascade) recognizePages(ctx context.Context, path string) ([]string, error) {
	if c.renderer == nil || c.recognizer == nil {
		return nil, errors.New("optical recognition engine unavailable")
	}
	doc, err := c.renderer.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages := make([]string, doc.PageCount())
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.RenderPage(i)
		if err != nil {
			c.log.Warn("page render failed", "page", i, "error", err)
			continue
		}
		text, err := c.recognizer.Recognize(ctx, img)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			c.log.Warn("page recognition failed", "page", i, "error", err)
			continue
		}
		pages[i] = text
	}
	return pages, nil
}

func joinPages(pages []string) string {
	var nonEmpty []string
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, pageDelimiter)
}

// structurePages runs the heuristic structurer over raw recognized text,
// page by page, joined with page headers and horizontal rules.
func structurePages(pages []string) (string, error) {
	var out []string
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, fmt.Sprintf("## Page %d\n\n%s", i+1, mdformat.FormatText(p)))
	}
	if len(out) == 0 {
		return "", errors.New("no recognized text to structure")
	}
	return strings.Join(out, "\n\n---\n\n"), nil
}

func placeholderMarkdown(filename string) string {
	return fmt.Sprintf(
		"# %s\n\n*No text could be extracted from this document. "+
			"It may be empty, corrupted, or a scan beyond recognition.*\n", filename)
}

// scoreResult computes best-effort quality diagnostics; inspection failures
// only reduce what gets reported.
func (c *Cascade) scoreResult(path, markdown string) Quality {
	pageCount, hasImages, err := InspectPDF(path)
	if err != nil {
		c.log.Warn("pdf inspection failed", "path", path, "error", err)
	}
	return ScoreOutput(markdown, pageCount, hasImages)
}
