package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"

	"github.com/mrlokans/reading-tracker/internal/storage"
)

// Sink stores one serialized snapshot under key and returns where it went.
type Sink interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// FileSink writes snapshots below a local directory.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Put(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}

// ObjectSink uploads snapshots to an S3-compatible bucket.
type ObjectSink struct {
	client storage.Client
	bucket string
	region string
}

func NewObjectSink(client storage.Client, bucket, region string) *ObjectSink {
	return &ObjectSink{client: client, bucket: bucket, region: region}
}

// Init creates the bucket if needed. Call once before the first Put.
func (s *ObjectSink) Init(ctx context.Context) error {
	return storage.EnsureBucket(ctx, s.client, s.bucket, s.region)
}

func (s *ObjectSink) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
