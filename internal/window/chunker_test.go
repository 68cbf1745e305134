package window

import (
	"strings"
	"testing"

	"github.com/docmill/docmill/internal/section"
)

func TestChunkWindows_SmallSectionSingleWindow(t *testing.T) {
	sec := &section.Section{ChunkID: "sec-1", Content: "# Title\n\nA short paragraph."}
	chunks := NewChunker(Config{WindowSize: 500, WindowOverlap: 50}).ChunkWindows(sec)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 window, got %d", len(chunks))
	}
	c := chunks[0]
	if c.SectionID != "sec-1" || c.WindowIndex != 0 {
		t.Errorf("chunk metadata = %+v", c)
	}
	if c.ChunkID != section.WindowChunkID("sec-1", 0) {
		t.Errorf("chunk id should be the deterministic derivation, got %s", c.ChunkID)
	}
	if !strings.Contains(c.Content, "# Title") || !strings.Contains(c.Content, "short paragraph") {
		t.Errorf("content = %q", c.Content)
	}
	if c.PrevChunkID != nil || c.NextChunkID != nil {
		t.Error("links must be nil at creation")
	}
}

func TestChunkWindows_SplitsWithOverlap(t *testing.T) {
	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, strings.Repeat("word ", 30))
	}
	sec := &section.Section{ChunkID: "sec-2", Content: strings.Join(paras, "\n\n")}

	chunks := NewChunker(Config{WindowSize: 400, WindowOverlap: 60}).ChunkWindows(sec)
	if len(chunks) < 3 {
		t.Fatalf("expected multiple windows, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.WindowIndex != i {
			t.Errorf("chunk %d WindowIndex = %d", i, c.WindowIndex)
		}
		if len(c.Content) > 400+60+2 {
			t.Errorf("chunk %d exceeds size bound: %d chars", i, len(c.Content))
		}
	}
	// Consecutive windows share the overlap tail.
	first := chunks[0].Content
	second := chunks[1].Content
	tail := first[len(first)-20:]
	if !strings.Contains(second, strings.TrimSpace(tail)) {
		t.Errorf("second window missing overlap from first:\n%q\n%q", tail, second)
	}
}

func TestChunkWindows_EmptySection(t *testing.T) {
	sec := &section.Section{ChunkID: "sec-3", Content: "   \n\n  "}
	if chunks := NewChunker(DefaultConfig()).ChunkWindows(sec); len(chunks) != 0 {
		t.Errorf("blank section should yield no windows, got %d", len(chunks))
	}
}

func TestChunkWindows_Deterministic(t *testing.T) {
	sec := &section.Section{ChunkID: "sec-4", Content: strings.Repeat("alpha beta gamma ", 200)}
	ch := NewChunker(Config{WindowSize: 300, WindowOverlap: 40})
	a := ch.ChunkWindows(sec)
	b := ch.ChunkWindows(sec)
	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ChunkID != b[i].ChunkID || a[i].Content != b[i].Content {
			t.Errorf("window %d differs between runs", i)
		}
	}
}

func TestMarkdownBlocks(t *testing.T) {
	src := "# Heading\n\nFirst paragraph\nstill first.\n\n- item one\n- item two\n\nLast."
	blocks := markdownBlocks(src)
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %q", len(blocks), blocks)
	}
	if blocks[0] != "# Heading" {
		t.Errorf("heading block = %q, marker must survive", blocks[0])
	}
	if blocks[1] != "First paragraph\nstill first." {
		t.Errorf("paragraph block = %q", blocks[1])
	}
	if blocks[2] != "- item one\n- item two" {
		t.Errorf("list block = %q", blocks[2])
	}
}

func TestSplitWords(t *testing.T) {
	parts := splitWords(strings.Repeat("abcde ", 100), 120, 20)
	if len(parts) < 3 {
		t.Fatalf("expected several parts, got %d", len(parts))
	}
	for i, p := range parts {
		if len(p) > 120+1 {
			t.Errorf("part %d too long: %d", i, len(p))
		}
		if i > 0 && !strings.HasPrefix(p, "abcde") {
			t.Errorf("part %d should start at a word boundary: %q", i, p)
		}
	}
}

func TestOverlapTail(t *testing.T) {
	if got := overlapTail("short", 50); got != "" {
		t.Errorf("short window should carry no overlap, got %q", got)
	}
	got := overlapTail("one two three four five", 9)
	if got != "four five" && got != "five" {
		t.Errorf("overlapTail = %q", got)
	}
}
