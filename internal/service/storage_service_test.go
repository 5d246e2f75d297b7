package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/maheshrc27/postpilot/configs"
)

// pngHeader is enough magic bytes for filetype to recognize a PNG.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func writeTempPNG(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))
	return path
}

type fakeStore struct {
	mu      sync.Mutex
	urlBase string
	fail    bool
	uploads []string
}

func (f *fakeStore) Upload(_ context.Context, key string, _ []byte, _ string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", "", fmt.Errorf("store unavailable")
	}
	f.uploads = append(f.uploads, key)
	return key, f.urlBase + "/" + key, nil
}

type fakeBackup struct {
	fakeStore
	reachable bool
}

func (f *fakeBackup) TestConnection(_ context.Context) bool {
	return f.reachable
}

func TestUploadImage_PrimaryAndBackup(t *testing.T) {
	primary := &fakeStore{urlBase: "https://primary"}
	backup := &fakeBackup{fakeStore: fakeStore{urlBase: "https://backup"}, reachable: true}
	svc := NewStorageService(primary, backup)

	res, err := svc.UploadImage(context.Background(), writeTempPNG(t, "card.png"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.PrimaryURL)
	assert.NotEmpty(t, res.BackupURL)
	assert.True(t, res.HasBackup())
	require.Len(t, primary.uploads, 1)
	assert.Equal(t, primary.uploads, backup.uploads, "both stores receive the same key")
}

func TestUploadImage_PrimaryFailureIsFatal(t *testing.T) {
	primary := &fakeStore{fail: true}
	backup := &fakeBackup{reachable: true}
	svc := NewStorageService(primary, backup)

	_, err := svc.UploadImage(context.Background(), writeTempPNG(t, "card.png"))
	require.Error(t, err)
	assert.Empty(t, backup.uploads, "backup is not attempted when primary fails")
}

func TestUploadImage_BackupProbeFalseDegradesGracefully(t *testing.T) {
	primary := &fakeStore{urlBase: "https://primary"}
	backup := &fakeBackup{reachable: false}
	svc := NewStorageService(primary, backup)

	res, err := svc.UploadImage(context.Background(), writeTempPNG(t, "card.png"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.PrimaryURL)
	assert.False(t, res.HasBackup())
	assert.Empty(t, backup.uploads)
}

func TestUploadImage_BackupUploadErrorDegradesGracefully(t *testing.T) {
	primary := &fakeStore{urlBase: "https://primary"}
	backup := &fakeBackup{fakeStore: fakeStore{fail: true}, reachable: true}
	svc := NewStorageService(primary, backup)

	res, err := svc.UploadImage(context.Background(), writeTempPNG(t, "card.png"))
	require.NoError(t, err)
	assert.False(t, res.HasBackup())
}

func TestUploadImage_RejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	svc := NewStorageService(&fakeStore{}, &fakeBackup{})
	_, err := svc.UploadImage(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")
}

func TestUploadImages_PreservesInputOrder(t *testing.T) {
	primary := &fakeStore{urlBase: "https://primary"}
	svc := NewStorageService(primary, &fakeBackup{})

	paths := make([]string, 5)
	for i := range paths {
		paths[i] = writeTempPNG(t, fmt.Sprintf("card-%d.png", i))
	}

	results, err := svc.UploadImages(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, res := range results {
		assert.Equal(t, paths[i], res.LocalPath, "result %d must map to input %d", i, i)
		assert.Contains(t, res.PrimaryID, filepath.Base(paths[i]))
	}
}

func TestUnconfiguredBackup(t *testing.T) {
	backup := NewBackupStore(cfg.BackupS3{})
	assert.False(t, backup.TestConnection(context.Background()))

	_, _, err := backup.Upload(context.Background(), "k", nil, "image/png")
	assert.ErrorIs(t, err, ErrBackupNotConfigured)
}
