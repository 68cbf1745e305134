package section

import (
	"strings"
	"testing"
)

func TestParseSectionChunk(t *testing.T) {
	data := []byte(`{"chunkId":"sec-1","title":"Intro","content":"Some markdown."}`)
	sec, err := ParseSectionChunk(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sec.ChunkID != "sec-1" {
		t.Errorf("ChunkID = %q, want sec-1", sec.ChunkID)
	}
	if sec.Title != "Intro" {
		t.Errorf("Title = %q, want Intro", sec.Title)
	}
	if sec.Content != "Some markdown." {
		t.Errorf("Content = %q", sec.Content)
	}
}

func TestParseSectionChunk_MissingID(t *testing.T) {
	if _, err := ParseSectionChunk([]byte(`{"content":"x"}`)); err == nil {
		t.Fatal("expected error for missing chunkId")
	}
}

func TestParseSectionChunk_BadJSON(t *testing.T) {
	if _, err := ParseSectionChunk([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestChunkRoundTrip(t *testing.T) {
	prev := "aaa"
	c := &Chunk{
		ChunkID:     "bbb",
		Content:     "chunk text",
		PrevChunkID: &prev,
		SectionID:   "sec-1",
		WindowIndex: 2,
	}
	data, err := c.MarshalBytes()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Nullable links must serialize as explicit null, not be omitted.
	if !strings.Contains(string(data), `"nextChunkId":null`) {
		t.Errorf("expected explicit null nextChunkId, got %s", data)
	}
	got, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ChunkID != c.ChunkID || got.Content != c.Content || got.WindowIndex != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.PrevChunkID == nil || *got.PrevChunkID != "aaa" {
		t.Errorf("PrevChunkID = %v, want aaa", got.PrevChunkID)
	}
	if got.NextChunkID != nil {
		t.Errorf("NextChunkID = %v, want nil", got.NextChunkID)
	}
}

func TestWindowChunkID_Deterministic(t *testing.T) {
	a := WindowChunkID("sec-1", 0)
	b := WindowChunkID("sec-1", 0)
	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
	if len(a) != 24 {
		t.Errorf("id length = %d, want 24", len(a))
	}
	if WindowChunkID("sec-1", 1) == a {
		t.Error("different window index should produce different id")
	}
	if WindowChunkID("sec-2", 0) == a {
		t.Error("different section should produce different id")
	}
}
