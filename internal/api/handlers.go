package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/docmill/docmill/internal/mdconvert"
	"github.com/docmill/docmill/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxRequestBytes = 1 << 20

type convertRequest struct {
	Tenant     string `json:"tenant"`
	SourcePath string `json:"source_path"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Tenant == "" || req.SourcePath == "" {
		jsonError(w, "tenant and source_path are required", http.StatusBadRequest)
		return
	}
	srcPath, err := sanitizePath(req.SourcePath)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !mdconvert.IsSupportedExtension(srcPath) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", path.Ext(srcPath)), http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:         uuid.NewString(),
		Kind:       pipeline.KindConvert,
		Tenant:     req.Tenant,
		SourcePath: srcPath,
		Status:     pipeline.StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	acceptJob(w, job)
}

type windowRequest struct {
	Tenant       string   `json:"tenant"`
	SectionPaths []string `json:"section_paths"`
	OutputPrefix string   `json:"output_prefix"`
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	var req windowRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Tenant == "" || req.OutputPrefix == "" {
		jsonError(w, "tenant and output_prefix are required", http.StatusBadRequest)
		return
	}
	if len(req.SectionPaths) == 0 {
		jsonError(w, "at least one section path is required", http.StatusBadRequest)
		return
	}
	sections := make([]string, len(req.SectionPaths))
	for i, p := range req.SectionPaths {
		clean, err := sanitizePath(p)
		if err != nil {
			jsonError(w, fmt.Sprintf("section_paths[%d]: %s", i, err), http.StatusBadRequest)
			return
		}
		sections[i] = clean
	}
	prefix, err := sanitizePath(req.OutputPrefix)
	if err != nil {
		jsonError(w, "output_prefix: "+err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:           uuid.NewString(),
		Kind:         pipeline.KindWindow,
		Tenant:       req.Tenant,
		SectionPaths: sections,
		OutputPrefix: prefix,
		Status:       pipeline.StatusQueued,
		Phase:        "queued",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	acceptJob(w, job)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// handleDeleteDocument removes a stored object (source, markdown, or chunk)
// from the tenant's container.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	tenant := r.URL.Query().Get("tenant")
	if tenant == "" {
		jsonError(w, "tenant is required", http.StatusBadRequest)
		return
	}
	docPath, err := sanitizePath(r.URL.Query().Get("path"))
	if err != nil {
		jsonError(w, "path: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.orchestrator.BlobClient().Delete(r.Context(), tenant, docPath); err != nil {
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": docPath})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"workers":     s.cfg.WorkerCount,
	})
}

func acceptJob(w http.ResponseWriter, job *pipeline.Job) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// sanitizePath normalizes a storage path and rejects traversal outside the
// tenant container.
func sanitizePath(p string) (string, error) {
	p = strings.TrimPrefix(strings.TrimSpace(p), "/")
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	clean := path.Clean(p)
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid path: %s", p)
	}
	return clean, nil
}
