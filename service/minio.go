package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Jurgenvdlecq/seatemail/config"
)

// MinioStager keeps uploads as objects in a MinIO bucket.
type MinioStager struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewMinioStager(cfg *config.MinioConfig) (*MinioStager, error) {
	return newMinioStager(cfg, nil)
}

func newMinioStager(cfg *config.MinioConfig, transport http.RoundTripper) (*MinioStager, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    "us-east-1",
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioStager{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioStager) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (s *MinioStager) Stage(ctx context.Context, name string, r io.Reader, size int64) (Staged, error) {
	key := objectKey(time.Now())
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:        "application/pdf",
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": name}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	return &minioObject{stager: s, key: key, size: info.Size}, nil
}

// ObjectURL returns the path-style URL of a staged object.
func (s *MinioStager) ObjectURL(key string) string {
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, key)
}

type minioObject struct {
	stager *MinioStager
	key    string
	size   int64
}

func (o *minioObject) Key() string { return o.key }
func (o *minioObject) Size() int64 { return o.size }

func (o *minioObject) Open(ctx context.Context) (Blob, error) {
	obj, err := o.stager.client.GetObject(ctx, o.stager.bucket, o.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return obj, nil
}

func (o *minioObject) Remove(ctx context.Context) error {
	err := o.stager.client.RemoveObject(ctx, o.stager.bucket, o.key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
