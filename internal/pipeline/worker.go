package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docmill/docmill/internal/blobstore"
	"github.com/docmill/docmill/internal/convert"
	"github.com/docmill/docmill/internal/mdconvert"
	"github.com/docmill/docmill/internal/window"
)

// Worker processes a single job.
type Worker struct {
	blob      *blobstore.Client
	cascade   *convert.Cascade
	windowCfg window.Config
	log       *slog.Logger
}

func NewWorker(blob *blobstore.Client, cascade *convert.Cascade, windowCfg window.Config, log *slog.Logger) *Worker {
	return &Worker{
		blob:      blob,
		cascade:   cascade,
		windowCfg: windowCfg,
		log:       log,
	}
}

// Process runs a job to completion, updating its status as it goes.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "tenant", job.Tenant)

	switch job.Kind {
	case KindConvert:
		w.processConvert(ctx, job, log)
	case KindWindow:
		w.processWindow(ctx, job, log)
	default:
		job.AddError(fmt.Sprintf("unknown job kind: %s", job.Kind))
		job.SetStatus(StatusFailed, "dispatch")
	}
}

// processConvert downloads the source document, converts it to Markdown
// (through the fallback cascade for PDFs, directly for everything else), and
// uploads the result next to the source with a .md extension.
func (w *Worker) processConvert(ctx context.Context, job *Job, log *slog.Logger) {
	job.SetStatus(StatusConverting, "download")

	data, err := w.getWithRetries(ctx, job.Tenant, job.SourcePath, log)
	if err != nil {
		log.Error("source download failed", "path", job.SourcePath, "error", err)
		job.AddError(fmt.Sprintf("download: %s", err))
		job.SetStatus(StatusFailed, "download")
		return
	}

	// The cascade and converters work on files; stage the blob locally,
	// keeping the extension so format dispatch still works.
	tmp, err := os.CreateTemp("", "docmill-src-*"+filepath.Ext(job.SourcePath))
	if err != nil {
		job.AddError(fmt.Sprintf("stage source: %s", err))
		job.SetStatus(StatusFailed, "stage")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		job.AddError(fmt.Sprintf("stage source: %s", err))
		job.SetStatus(StatusFailed, "stage")
		return
	}
	tmp.Close()

	job.SetStatus(StatusConverting, "convert")
	markdown, strategy, scanned, err := w.convertStaged(ctx, tmpPath, job.SourcePath)
	if err != nil {
		log.Error("conversion failed", "path", job.SourcePath, "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "convert")
		return
	}

	job.SetStatus(StatusConverting, "upload")
	outPath := MarkdownPath(job.SourcePath)
	if err := w.putWithRetries(ctx, job.Tenant, outPath, []byte(markdown), log); err != nil {
		log.Error("markdown upload failed", "path", outPath, "error", err)
		job.AddError(fmt.Sprintf("upload: %s", err))
		job.SetStatus(StatusFailed, "upload")
		return
	}

	job.SetConvertResult(outPath, strategy, scanned)
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion job complete", "output", outPath, "strategy", strategy, "scanned", scanned)
}

// convertStaged dispatches on extension: PDFs go through the fallback
// cascade, other formats straight to their converter.
func (w *Worker) convertStaged(ctx context.Context, stagedPath, sourcePath string) (string, string, bool, error) {
	if strings.EqualFold(filepath.Ext(sourcePath), ".pdf") {
		result, err := w.cascade.Convert(ctx, stagedPath)
		if err != nil {
			return "", "", false, err
		}
		return result.Markdown, result.Strategy, result.Scanned, nil
	}

	conv, err := mdconvert.ForFile(sourcePath)
	if err != nil {
		return "", "", false, err
	}
	f, err := os.Open(stagedPath)
	if err != nil {
		return "", "", false, err
	}
	defer f.Close()
	markdown, err := conv.Convert(f, filepath.Base(sourcePath))
	if err != nil {
		return "", "", false, err
	}
	return markdown, convert.StrategyDirect, false, nil
}

// processWindow runs the windower over the job's sections, wiring its
// heartbeat into job progress.
func (w *Worker) processWindow(ctx context.Context, job *Job, log *slog.Logger) {
	job.SetStatus(StatusWindowing, "windowing")
	job.SetSectionsTotal(len(job.SectionPaths))

	store := blobstore.NewContainerStore(w.blob, job.Tenant)
	windower := window.NewWindower(window.NewChunker(w.windowCfg), store, log)

	paths, err := windower.WindowSections(ctx, job.SectionPaths, job.OutputPrefix, job.SetHeartbeat)
	job.SetChunkPaths(paths)
	if err != nil {
		log.Error("windowing failed", "error", err, "chunks_written", len(paths))
		job.AddError(fmt.Sprintf("window: %s", err))
		job.SetStatus(StatusFailed, "windowing")
		return
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("windowing job complete", "sections", len(job.SectionPaths), "chunks", len(paths))
}

func (w *Worker) getWithRetries(ctx context.Context, tenant, path string, log *slog.Logger) ([]byte, error) {
	var data []byte
	err := w.withRetries(ctx, log, "get "+path, func() error {
		var err error
		data, err = w.blob.Get(ctx, tenant, path)
		return err
	})
	return data, err
}

func (w *Worker) putWithRetries(ctx context.Context, tenant, path string, data []byte, log *slog.Logger) error {
	return w.withRetries(ctx, log, "put "+path, func() error {
		return w.blob.Put(ctx, tenant, path, data)
	})
}

func (w *Worker) withRetries(ctx context.Context, log *slog.Logger, op string, fn func() error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable storage error", "op", op, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
