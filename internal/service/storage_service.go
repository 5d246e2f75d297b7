package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// UploadResult is the normalized outcome of uploading one rendered image.
// Backup fields stay empty when the backup channel is down or absent.
type UploadResult struct {
	LocalPath  string
	PrimaryID  string
	PrimaryURL string
	BackupID   string
	BackupURL  string
}

func (r *UploadResult) HasBackup() bool {
	return r.BackupURL != ""
}

type StorageService interface {
	UploadImage(ctx context.Context, path string) (*UploadResult, error)
	UploadImages(ctx context.Context, paths []string) ([]*UploadResult, error)
}

type storageService struct {
	primary ObjectStore
	backup  BackupStore
	folder  string
}

func NewStorageService(primary ObjectStore, backup BackupStore) StorageService {
	return &storageService{
		primary: primary,
		backup:  backup,
		folder:  "posts",
	}
}

// UploadImage pushes one rendered card to primary storage and, best
// effort, to backup storage. Primary failure is fatal; backup failure only
// logs a warning and leaves the backup fields empty.
func (s *storageService) UploadImage(ctx context.Context, path string) (*UploadResult, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered image %s: %w", path, err)
	}

	kind, err := filetype.Match(body)
	if err != nil || !filetype.IsImage(body) {
		return nil, fmt.Errorf("rendered file %s is not an image", path)
	}

	suffix, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate storage key: %w", err)
	}
	key := fmt.Sprintf("%s/%s-%s", s.folder, suffix, filepath.Base(path))

	primaryID, primaryURL, err := s.primary.Upload(ctx, key, body, kind.MIME.Value)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{
		LocalPath:  path,
		PrimaryID:  primaryID,
		PrimaryURL: primaryURL,
	}

	if !s.backup.TestConnection(ctx) {
		slog.Warn("backup storage unavailable, continuing without redundancy", "key", key)
		return result, nil
	}

	backupID, backupURL, err := s.backup.Upload(ctx, key, body, kind.MIME.Value)
	if err != nil {
		slog.Warn("backup upload failed, continuing without redundancy", "key", key, "error", err)
		return result, nil
	}

	result.BackupID = backupID
	result.BackupURL = backupURL
	return result, nil
}

// UploadImages uploads a batch concurrently. Results come back in input
// order because carousel position is derived from it.
func (s *storageService) UploadImages(ctx context.Context, paths []string) ([]*UploadResult, error) {
	results := make([]*UploadResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := s.UploadImage(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
