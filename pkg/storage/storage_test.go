package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveSaveAndPath(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, archive.Save("job-1/report.csv", []byte("a,b\n")))

	path, err := archive.Path("job-1/report.csv")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestArchiveRejectsEscapingPaths(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, archive.Save("../outside.csv", []byte("x")))
	assert.Error(t, archive.Save("/etc/passwd", []byte("x")))
}

func TestArchiveSweepRemovesOldFiles(t *testing.T) {
	root := t.TempDir()
	archive, err := NewArchive(root)
	require.NoError(t, err)

	require.NoError(t, archive.Save("job-1/old.csv", []byte("old")))
	require.NoError(t, archive.Save("job-2/new.csv", []byte("new")))

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "job-1", "old.csv"), stale, stale))

	removed, err := archive.Sweep(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("job-1", "old.csv")}, removed)

	_, err = os.Stat(filepath.Join(root, "job-2", "new.csv"))
	assert.NoError(t, err)
}

func TestDownloadTokenRoundTrip(t *testing.T) {
	signer := NewDownloadTokenSigner("unit-secret", time.Hour)

	token, issuedExpiry, err := signer.Issue("job-7", "job-7/attendance_February_2024.csv")
	require.NoError(t, err)

	jobID, rel, expiresAt, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "job-7", jobID)
	assert.Equal(t, "job-7/attendance_February_2024.csv", rel)
	assert.WithinDuration(t, issuedExpiry, expiresAt, time.Second)
}

func TestDownloadTokenRejectsTampering(t *testing.T) {
	signer := NewDownloadTokenSigner("unit-secret", time.Hour)

	token, _, err := signer.Issue("job-7", "job-7/file.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Verify(token + "x")
	assert.Error(t, err)

	other := NewDownloadTokenSigner("different-secret", time.Hour)
	_, _, _, err = other.Verify(token)
	assert.Error(t, err)
}

func TestDownloadTokenRejectsExpired(t *testing.T) {
	signer := NewDownloadTokenSigner("unit-secret", time.Nanosecond)

	token, _, err := signer.Issue("job-7", "job-7/file.csv")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, _, _, err = signer.Verify(token)
	assert.Error(t, err)
}
