// Package window slices section Markdown into overlapping retrieval windows
// and stitches the windows of consecutive sections into one doubly-linked
// chunk chain.
package window

import (
	"strings"
	"unicode"

	"github.com/docmill/docmill/internal/section"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Config controls the windowing policy.
type Config struct {
	WindowSize    int // Target window size in characters.
	WindowOverlap int // Characters carried from one window into the next.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize:    2000,
		WindowOverlap: 200,
	}
}

// Chunker produces window chunks from one section at a time.
type Chunker struct {
	cfg Config
}

func NewChunker(cfg Config) *Chunker {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 2000
	}
	if cfg.WindowOverlap < 0 || cfg.WindowOverlap >= cfg.WindowSize {
		cfg.WindowOverlap = cfg.WindowSize / 10
	}
	return &Chunker{cfg: cfg}
}

// ChunkWindows slices a section's Markdown into ordered window chunks. Every
// window becomes a chunk: nothing is filtered, merged, or reordered, and
// identifiers derive from the section id and window index. Link fields are
// left nil; the linker owns them.
func (c *Chunker) ChunkWindows(sec *section.Section) []*section.Chunk {
	blocks := markdownBlocks(sec.Content)
	windows := packBlocks(blocks, c.cfg)

	chunks := make([]*section.Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, &section.Chunk{
			ChunkID:     section.WindowChunkID(sec.ChunkID, i),
			Content:     w,
			SectionID:   sec.ChunkID,
			WindowIndex: i,
		})
	}
	return chunks
}

// markdownBlocks splits Markdown source into top-level blocks so windows
// break between blocks rather than mid-heading. Block spans are widened to
// whole source lines to keep Markdown markers intact.
func markdownBlocks(src string) []string {
	b := []byte(src)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(b))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		start, stop, ok := nodeSpan(n)
		if !ok {
			continue
		}
		for start > 0 && b[start-1] != '\n' {
			start--
		}
		for stop < len(b) && b[stop] != '\n' {
			stop++
		}
		blk := strings.TrimRight(string(b[start:stop]), "\n")
		if strings.TrimSpace(blk) != "" {
			blocks = append(blocks, blk)
		}
	}

	if len(blocks) == 0 {
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			blocks = []string{trimmed}
		}
	}
	return blocks
}

// nodeSpan finds the source byte range covered by a block node and its
// descendants.
func nodeSpan(n ast.Node) (int, int, bool) {
	start, stop := -1, -1
	var visit func(ast.Node)
	visit = func(n ast.Node) {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				if start == -1 || seg.Start < start {
					start = seg.Start
				}
				if seg.Stop > stop {
					stop = seg.Stop
				}
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	visit(n)
	if start == -1 {
		return 0, 0, false
	}
	return start, stop, true
}

// packBlocks packs blocks into windows of at most WindowSize characters,
// carrying an overlap tail between consecutive windows. Oversized blocks are
// hard-split on word boundaries.
func packBlocks(blocks []string, cfg Config) []string {
	var windows []string
	var current strings.Builder

	flush := func() string {
		w := current.String()
		windows = append(windows, w)
		current.Reset()
		return overlapTail(w, cfg.WindowOverlap)
	}

	for _, blk := range blocks {
		if len(blk) > cfg.WindowSize {
			if current.Len() > 0 {
				flush()
			}
			for _, part := range splitWords(blk, cfg.WindowSize, cfg.WindowOverlap) {
				current.WriteString(part)
				flush()
			}
			continue
		}

		if current.Len() > 0 && current.Len()+2+len(blk) > cfg.WindowSize {
			if tail := flush(); tail != "" {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(blk)
	}

	if current.Len() > 0 {
		windows = append(windows, current.String())
	}
	return windows
}

// splitWords breaks an oversized block into size-bounded parts with overlap.
func splitWords(textBlock string, size, overlap int) []string {
	words := strings.Fields(textBlock)
	var parts []string
	var current strings.Builder

	for _, w := range words {
		if current.Len() > 0 && current.Len()+1+len(w) > size {
			parts = append(parts, current.String())
			tail := overlapTail(current.String(), overlap)
			current.Reset()
			if tail != "" {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(w)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// overlapTail returns roughly the last overlap characters of w, cut forward
// to a word boundary. Windows shorter than the overlap carry nothing.
func overlapTail(w string, overlap int) string {
	if overlap <= 0 || len(w) <= overlap {
		return ""
	}
	idx := len(w) - overlap
	for idx < len(w) && !unicode.IsSpace(rune(w[idx])) {
		idx++
	}
	return strings.TrimSpace(w[idx:])
}
