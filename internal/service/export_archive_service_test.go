package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/storage"
)

func newArchiveForTest(t *testing.T) *ExportArchiveService {
	t.Helper()
	store, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadTokenSigner("archive-test-secret", time.Hour)

	exports := newExportServiceForTest([]models.Employee{
		{ID: 1, Code: "GMDQS001", FullName: "Aisha Khan", Department: "Teaching", MobileNumber: "0300111"},
	}, newAttendanceRepoStub(), reportRepoStub{})

	svc := NewExportArchiveService(exports, store, signer, 1, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func waitForJob(t *testing.T, svc *ExportArchiveService, id string) *ExportJob {
	t.Helper()
	var job *ExportJob
	require.Eventually(t, func() bool {
		var err error
		job, err = svc.Job(id)
		return err == nil && job.Status != ExportJobPending
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestArchiveGridJobCompletesWithToken(t *testing.T) {
	svc := newArchiveForTest(t)

	queued, err := svc.EnqueueGrid("u1", 2024, 1, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, ExportJobPending, queued.Status)

	job := waitForJob(t, svc, queued.ID)
	require.Equal(t, ExportJobCompleted, job.Status)
	assert.Equal(t, "attendance_February_2024.csv", job.Filename)
	assert.NotEmpty(t, job.Token)
	require.NotNil(t, job.ExpiresAt)

	path, filename, err := svc.Resolve(job.Token)
	require.NoError(t, err)
	assert.Equal(t, job.Filename, filename)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Employee ID")
}

func TestArchiveReportJobFailureIsRecorded(t *testing.T) {
	svc := newArchiveForTest(t)

	// Start after end fails validation inside the render step.
	queued, err := svc.EnqueueReport("u1", models.ReportRequest{
		StartDate: "2024-02-10",
		EndDate:   "2024-02-01",
	}, FormatCSV)
	require.NoError(t, err)

	job := waitForJob(t, svc, queued.ID)
	assert.Equal(t, ExportJobFailed, job.Status)
	assert.NotEmpty(t, job.Error)
	assert.Empty(t, job.Token)
}

func TestArchiveUnknownJobIsNotFound(t *testing.T) {
	svc := newArchiveForTest(t)

	_, err := svc.Job("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestArchiveResolveRejectsForgedToken(t *testing.T) {
	svc := newArchiveForTest(t)

	_, _, err := svc.Resolve("not-a-real-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
