// Package section defines the section and chunk records exchanged with the
// upstream segmentation step and the downstream retrieval index.
package section

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Section is one pre-segmented span of a document's Markdown, the unit fed
// into windowing. ChunkID is assigned by the segmentation step and is stable.
type Section struct {
	ChunkID string `json:"chunkId"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// ParseSectionChunk decodes a section-chunk JSON document.
func ParseSectionChunk(data []byte) (*Section, error) {
	var sec Section
	if err := json.Unmarshal(data, &sec); err != nil {
		return nil, fmt.Errorf("decode section chunk: %w", err)
	}
	if sec.ChunkID == "" {
		return nil, fmt.Errorf("section chunk missing chunkId")
	}
	return &sec, nil
}

// Chunk is the retrieval unit. PrevChunkID and NextChunkID form a
// doubly-linked sequence across the whole document; both are nil at creation
// and patched once the neighbour is known.
type Chunk struct {
	ChunkID     string  `json:"chunkId"`
	Content     string  `json:"content"`
	PrevChunkID *string `json:"prevChunkId"`
	NextChunkID *string `json:"nextChunkId"`
	SectionID   string  `json:"sectionId"`
	WindowIndex int     `json:"windowIndex"`
}

// MarshalBytes serializes the chunk for blob persistence.
func (c *Chunk) MarshalBytes() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode chunk %s: %w", c.ChunkID, err)
	}
	return data, nil
}

// UnmarshalChunk decodes a persisted chunk record.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var c Chunk
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}
	return &c, nil
}

// WindowChunkID derives the identifier for the windowIndex-th window of a
// section. The derivation is a stable hash so a retried run regenerates the
// same identifiers and persistence stays overwrite-safe.
func WindowChunkID(sectionID string, windowIndex int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", sectionID, windowIndex)))
	return fmt.Sprintf("%x", sum[:12])
}
