package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/maheshrc27/postpilot/configs"
)

// ObjectStore uploads one object and returns its storage id and public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (id string, url string, err error)
}

// BackupStore is an ObjectStore with a connectivity probe. A store may be
// entirely unconfigured, in which case the probe reports false and Upload
// returns ErrBackupNotConfigured instead of reaching the network.
type BackupStore interface {
	ObjectStore
	TestConnection(ctx context.Context) bool
}

var ErrBackupNotConfigured = fmt.Errorf("backup storage is not configured")

// R2Store is the primary store, backed by Cloudflare R2's S3 API.
type R2Store struct {
	config cfg.R2
}

func NewR2Store(config cfg.R2) *R2Store {
	return &R2Store{config: config}
}

func (r *R2Store) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.AccessKey, r.config.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build R2 client config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.AccountID))
	}), nil
}

func (r *R2Store) Upload(ctx context.Context, key string, body []byte, contentType string) (string, string, error) {
	client, err := r.client(ctx)
	if err != nil {
		return "", "", err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		slog.Error("R2 upload failed", "key", key, "error", err)
		return "", "", fmt.Errorf("primary storage upload failed: %w", err)
	}

	return key, fmt.Sprintf("%s/%s", r.config.PublicURL, key), nil
}

// S3BackupStore is the best-effort backup store on a plain S3 bucket.
type S3BackupStore struct {
	config cfg.BackupS3
}

// NewBackupStore returns the S3 backup store, or an unconfigured sentinel
// when the backup bucket settings are absent.
func NewBackupStore(config cfg.BackupS3) BackupStore {
	if config.BucketName == "" || config.AccessKey == "" {
		return &unconfiguredBackup{}
	}
	return &S3BackupStore{config: config}
}

func (s *S3BackupStore) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.AccessKey, s.config.SecretKey, "")),
		awsconfig.WithRegion(s.config.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build backup S3 client config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func (s *S3BackupStore) TestConnection(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := s.client(probeCtx)
	if err != nil {
		slog.Warn("backup storage probe failed", "error", err)
		return false
	}

	_, err = client.HeadBucket(probeCtx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.BucketName),
	})
	if err != nil {
		slog.Warn("backup storage unreachable", "bucket", s.config.BucketName, "error", err)
		return false
	}
	return true
}

func (s *S3BackupStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, string, error) {
	client, err := s.client(ctx)
	if err != nil {
		return "", "", err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("backup storage upload failed: %w", err)
	}

	return key, fmt.Sprintf("%s/%s", s.config.PublicURL, key), nil
}

type unconfiguredBackup struct{}

func (u *unconfiguredBackup) TestConnection(ctx context.Context) bool {
	return false
}

func (u *unconfiguredBackup) Upload(ctx context.Context, key string, body []byte, contentType string) (string, string, error) {
	return "", "", ErrBackupNotConfigured
}
