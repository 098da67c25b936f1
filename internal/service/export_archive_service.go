package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/jobs"
	"github.com/gmdqs/attendance-admin-api/pkg/storage"
)

// ExportJobStatus tracks an archived export through its lifecycle.
type ExportJobStatus string

const (
	ExportJobPending   ExportJobStatus = "pending"
	ExportJobCompleted ExportJobStatus = "completed"
	ExportJobFailed    ExportJobStatus = "failed"
)

// ExportJob describes one queued export and, once rendered, its download
// token.
type ExportJob struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    ExportJobStatus `json:"status"`
	Filename  string          `json:"filename,omitempty"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type exportJobPayload struct {
	userID string
	kind   string
	year   int
	month  int
	report models.ReportRequest
	format ExportFormat
}

// ExportArchiveService renders exports in the background and keeps the
// results on disk behind signed download tokens. Large months render off the
// request path; the caller polls the job and follows the token when done.
type ExportArchiveService struct {
	exports *ExportService
	store   *storage.Archive
	signer  *storage.DownloadTokenSigner
	pool    *jobs.Pool
	logger  *zap.Logger

	mu   sync.RWMutex
	seen map[string]*ExportJob
}

// NewExportArchiveService constructs the archive and its worker queue. Call
// Start before enqueueing and Stop on shutdown.
func NewExportArchiveService(exports *ExportService, store *storage.Archive, signer *storage.DownloadTokenSigner, workers int, logger *zap.Logger) *ExportArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportArchiveService{
		exports: exports,
		store:   store,
		signer:  signer,
		logger:  logger,
		seen:    make(map[string]*ExportJob),
	}
	s.pool = jobs.NewPool("export-archive", s.process, jobs.Options{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ExportArchiveService) Start(ctx context.Context) {
	s.pool.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportArchiveService) Stop() {
	s.pool.Stop()
}

// EnqueueGrid queues a month grid export. Month is 0-indexed.
func (s *ExportArchiveService) EnqueueGrid(userID string, year, month int, format ExportFormat) (*ExportJob, error) {
	return s.enqueue(exportJobPayload{userID: userID, kind: "grid", year: year, month: month, format: format})
}

// EnqueueReport queues a range report export.
func (s *ExportArchiveService) EnqueueReport(userID string, req models.ReportRequest, format ExportFormat) (*ExportJob, error) {
	return s.enqueue(exportJobPayload{userID: userID, kind: "report", report: req, format: format})
}

// Job returns the tracked state for a job id.
func (s *ExportArchiveService) Job(id string) (*ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.seen[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	dup := *job
	return &dup, nil
}

// Resolve validates a download token and returns the on-disk path and the
// filename to present.
func (s *ExportArchiveService) Resolve(token string) (path, filename string, err error) {
	jobID, relPath, _, err := s.signer.Verify(token)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	s.mu.RLock()
	job, ok := s.seen[jobID]
	s.mu.RUnlock()
	if !ok || job.Status != ExportJobCompleted {
		return "", "", appErrors.Clone(appErrors.ErrNotFound, "export not available")
	}

	path, err = s.store.Path(relPath)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to locate export file")
	}
	return path, job.Filename, nil
}

func (s *ExportArchiveService) enqueue(payload exportJobPayload) (*ExportJob, error) {
	job := &ExportJob{
		ID:        uuid.NewString(),
		Kind:      payload.kind,
		Status:    ExportJobPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.seen[job.ID] = job
	s.mu.Unlock()

	if err := s.pool.Enqueue(jobs.Task{ID: job.ID, Kind: payload.kind, Payload: payload}); err != nil {
		s.mu.Lock()
		delete(s.seen, job.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}

	dup := *job
	return &dup, nil
}

func (s *ExportArchiveService) process(ctx context.Context, job jobs.Task) error {
	payload, ok := job.Payload.(exportJobPayload)
	if !ok {
		s.fail(job.ID, "malformed export payload")
		return nil
	}

	var (
		file *ExportFile
		err  error
	)
	switch payload.kind {
	case "grid":
		file, err = s.exports.ExportGrid(ctx, payload.userID, payload.year, payload.month, payload.format)
	case "report":
		file, err = s.exports.ExportReport(ctx, payload.userID, payload.report, payload.format)
	default:
		s.fail(job.ID, fmt.Sprintf("unknown export kind %q", payload.kind))
		return nil
	}
	if err != nil {
		s.fail(job.ID, err.Error())
		return nil
	}

	relPath := fmt.Sprintf("%s/%s", job.ID, file.Filename)
	if err := s.store.Save(relPath, file.Data); err != nil {
		s.fail(job.ID, err.Error())
		return nil
	}

	token, expiresAt, err := s.signer.Issue(job.ID, relPath)
	if err != nil {
		s.fail(job.ID, err.Error())
		return nil
	}

	s.mu.Lock()
	if tracked, ok := s.seen[job.ID]; ok {
		tracked.Status = ExportJobCompleted
		tracked.Filename = file.Filename
		tracked.Token = token
		tracked.ExpiresAt = &expiresAt
	}
	s.mu.Unlock()
	return nil
}

func (s *ExportArchiveService) fail(jobID, reason string) {
	s.logger.Warn("export job failed", zap.String("job_id", jobID), zap.String("reason", reason))
	s.mu.Lock()
	if tracked, ok := s.seen[jobID]; ok {
		tracked.Status = ExportJobFailed
		tracked.Error = reason
	}
	s.mu.Unlock()
}

// CleanupExpired removes archived files older than the TTL.
func (s *ExportArchiveService) CleanupExpired(ttl time.Duration) {
	deleted, err := s.store.Sweep(ttl)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
}
