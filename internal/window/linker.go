package window

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docmill/docmill/internal/section"
)

// Store is the narrow blob capability the linker needs. Put has overwrite
// semantics, which together with deterministic chunk ids makes a retried run
// converge on the same objects.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte) error
}

// Heartbeat reports section-level progress ("completed/total") to the
// invoking substrate. It is liveness signalling, not correctness.
type Heartbeat func(progress string)

// Windower drives the chunker over a document's sections and links the
// resulting windows into one chain.
type Windower struct {
	chunker *Chunker
	store   Store
	log     *slog.Logger
}

func NewWindower(chunker *Chunker, store Store, log *slog.Logger) *Windower {
	return &Windower{chunker: chunker, store: store, log: log}
}

// WindowSections converts each section into window chunks and stitches the
// sequences into one doubly-linked chain across the whole document. A chunk
// is persisted exactly once, deferred by one position: only when its
// successor is known (or the stream ends) are its links final. Returns the
// ordered storage paths of every persisted chunk.
//
// Storage and section-parse failures abort the operation; the substrate owns
// retries, which are safe because chunk ids and paths are deterministic.
func (w *Windower) WindowSections(ctx context.Context, sectionPaths []string, outputPrefix string, hb Heartbeat) ([]string, error) {
	result := make([]string, 0)
	var previousLast *section.Chunk
	total := len(sectionPaths)

	for i, secPath := range sectionPaths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		data, err := w.store.Get(ctx, secPath)
		if err != nil {
			return result, fmt.Errorf("fetch section %s: %w", secPath, err)
		}
		sec, err := section.ParseSectionChunk(data)
		if err != nil {
			return result, fmt.Errorf("section %s: %w", secPath, err)
		}

		for _, chunk := range w.chunker.ChunkWindows(sec) {
			if previousLast != nil {
				next := chunk.ChunkID
				prev := previousLast.ChunkID
				previousLast.NextChunkID = &next
				chunk.PrevChunkID = &prev

				// The predecessor is now linked on both sides; persist it.
				path, err := w.persist(ctx, outputPrefix, previousLast)
				if err != nil {
					return result, err
				}
				result = append(result, path)
			}
			previousLast = chunk
		}

		if hb != nil {
			hb(fmt.Sprintf("%d/%d", i+1, total))
		}
		w.log.Info("windowed section",
			"section", sec.ChunkID, "progress", fmt.Sprintf("%d/%d", i+1, total))
	}

	// The terminal chunk keeps a nil next link.
	if previousLast != nil {
		path, err := w.persist(ctx, outputPrefix, previousLast)
		if err != nil {
			return result, err
		}
		result = append(result, path)
	}

	return result, nil
}

func (w *Windower) persist(ctx context.Context, prefix string, c *section.Chunk) (string, error) {
	data, err := c.MarshalBytes()
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s/%s.chunk.json", strings.TrimSuffix(prefix, "/"), c.ChunkID)
	if err := w.store.Put(ctx, path, data); err != nil {
		return "", fmt.Errorf("persist chunk %s: %w", c.ChunkID, err)
	}
	return path, nil
}
