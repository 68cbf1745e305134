package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docmill/docmill/internal/config"
	"github.com/docmill/docmill/internal/pipeline"
)

func newTestServer() *Server {
	cfg := config.Config{
		ServiceAPIKey: "secret",
		WorkerCount:   2,
		MaxQueueSize:  8,
		WindowSize:    2000,
		WindowOverlap: 200,
		JobTTL:        time.Hour,
	}
	log := slog.New(slog.DiscardHandler)
	// Workers are never started: submitted jobs stay queued, which is all
	// the handler tests need.
	orch := pipeline.NewOrchestrator(cfg, nil, nil, log)
	return NewServer(orch, log, cfg)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d", rec.Code)
	}
}

func TestConvertAccepted(t *testing.T) {
	s := newTestServer()
	rec := doJSON(t, s, http.MethodPost, "/api/convert",
		`{"tenant":"t1","source_path":"docs/report.pdf"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	jobID, _ := resp["job_id"].(string)
	if jobID == "" {
		t.Fatal("missing job_id")
	}
	if resp["kind"] != "convert" || resp["status"] != "queued" {
		t.Errorf("response = %v", resp)
	}

	status := doJSON(t, s, http.MethodGet, "/api/jobs/"+jobID, "")
	if status.Code != http.StatusOK {
		t.Errorf("job status = %d", status.Code)
	}
}

func TestConvertValidation(t *testing.T) {
	s := newTestServer()
	cases := []struct {
		name string
		body string
	}{
		{"missing tenant", `{"source_path":"a.pdf"}`},
		{"missing source", `{"tenant":"t"}`},
		{"unsupported type", `{"tenant":"t","source_path":"a.exe"}`},
		{"traversal", `{"tenant":"t","source_path":"../../etc/passwd.pdf"}`},
		{"unknown field", `{"tenant":"t","source_path":"a.pdf","bogus":1}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		rec := doJSON(t, s, http.MethodPost, "/api/convert", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", tc.name, rec.Code)
		}
	}
}

func TestWindowAccepted(t *testing.T) {
	s := newTestServer()
	rec := doJSON(t, s, http.MethodPost, "/api/window",
		`{"tenant":"t1","section_paths":["doc/s1.json","doc/s2.json"],"output_prefix":"doc/chunks"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["kind"] != "window" {
		t.Errorf("response = %v", resp)
	}
}

func TestWindowValidation(t *testing.T) {
	s := newTestServer()
	cases := []string{
		`{"tenant":"t","output_prefix":"p"}`,
		`{"tenant":"t","section_paths":[],"output_prefix":"p"}`,
		`{"tenant":"t","section_paths":["ok","../bad"],"output_prefix":"p"}`,
		`{"section_paths":["s"],"output_prefix":"p"}`,
	}
	for i, body := range cases {
		rec := doJSON(t, s, http.MethodPost, "/api/window", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d", i, rec.Code)
		}
	}
}

func TestJobNotFound(t *testing.T) {
	s := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/api/jobs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := resp["queue_depth"]; !ok {
		t.Errorf("response = %v", resp)
	}
}

func TestDeleteDocumentValidation(t *testing.T) {
	s := newTestServer()
	cases := []string{
		"/api/documents?path=docs/a.pdf",
		"/api/documents?tenant=t",
		"/api/documents?tenant=t&path=../up",
	}
	for _, url := range cases {
		rec := doJSON(t, s, http.MethodDelete, url, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", url, rec.Code)
		}
	}
}

func TestSanitizePath(t *testing.T) {
	if _, err := sanitizePath("  "); err == nil {
		t.Error("blank path should fail")
	}
	if _, err := sanitizePath("../up"); err == nil {
		t.Error("traversal should fail")
	}
	got, err := sanitizePath("/docs//a/./b.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "docs/a/b.pdf" {
		t.Errorf("got %q", got)
	}
}
