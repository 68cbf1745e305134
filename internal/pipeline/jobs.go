package pipeline

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// JobKind selects which pipeline a job runs.
type JobKind string

const (
	KindConvert JobKind = "convert"
	KindWindow  JobKind = "window"
)

// JobStatus represents the state of a job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusWindowing  JobStatus = "windowing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of one conversion or windowing run.
type Job struct {
	mu sync.Mutex

	ID     string  `json:"job_id"`
	Kind   JobKind `json:"kind"`
	Tenant string  `json:"tenant"`

	// Convert jobs: the source document blob.
	SourcePath string `json:"source_path,omitempty"`

	// Window jobs: ordered section blobs and the chunk output prefix.
	SectionPaths []string `json:"section_paths,omitempty"`
	OutputPrefix string   `json:"output_prefix,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`
	Result   Result   `json:"result"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks in-flight state. Heartbeat carries the most recent
// "completed/total" section report from a windowing run.
type Progress struct {
	SectionsTotal int      `json:"sections_total"`
	SectionsDone  int      `json:"sections_done"`
	Heartbeat     string   `json:"heartbeat,omitempty"`
	Errors        []string `json:"errors"`
}

// Result holds the outputs of a finished job.
type Result struct {
	MarkdownPath string   `json:"markdown_path,omitempty"`
	Strategy     string   `json:"strategy,omitempty"`
	Scanned      bool     `json:"scanned,omitempty"`
	ChunkPaths   []string `json:"chunk_paths,omitempty"`
	ChunksTotal  int      `json:"chunks_total,omitempty"`
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetHeartbeat records the latest section progress report.
func (j *Job) SetHeartbeat(progress string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Heartbeat = progress
	j.Progress.SectionsDone++
	j.UpdatedAt = time.Now()
}

// SetSectionsTotal records how many sections the job will process.
func (j *Job) SetSectionsTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsTotal = n
	j.UpdatedAt = time.Now()
}

// SetConvertResult records the output of a conversion run.
func (j *Job) SetConvertResult(markdownPath, strategy string, scanned bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result.MarkdownPath = markdownPath
	j.Result.Strategy = strategy
	j.Result.Scanned = scanned
	j.UpdatedAt = time.Now()
}

// SetChunkPaths records the output of a windowing run.
func (j *Job) SetChunkPaths(paths []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result.ChunkPaths = paths
	j.Result.ChunksTotal = len(paths)
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Kind     JobKind   `json:"kind"`
	Tenant   string    `json:"tenant"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
	Result   Result    `json:"result"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	paths := j.Result.ChunkPaths
	if paths == nil {
		paths = []string{}
	}
	return JobSnapshot{
		ID:     j.ID,
		Kind:   j.Kind,
		Tenant: j.Tenant,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			SectionsTotal: j.Progress.SectionsTotal,
			SectionsDone:  j.Progress.SectionsDone,
			Heartbeat:     j.Progress.Heartbeat,
			Errors:        errs,
		},
		Result: Result{
			MarkdownPath: j.Result.MarkdownPath,
			Strategy:     j.Result.Strategy,
			Scanned:      j.Result.Scanned,
			ChunkPaths:   paths,
			ChunksTotal:  j.Result.ChunksTotal,
		},
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// MarkdownPath derives the Markdown output path from a source document path
// by rewriting the extension.
func MarkdownPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + ".md"
}
