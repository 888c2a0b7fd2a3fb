// Package photos stores event photos in an S3-compatible bucket. Photos
// become browsable once an event has passed; objects are keyed by event id
// so a whole event's gallery is one prefix listing.
package photos

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/partyshare-api/internal/config"
	"github.com/gravadigital/partyshare-api/internal/logger"
)

// Photo describes one stored photo.
type Photo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store wraps a MinIO bucket holding event photos.
type Store struct {
	client *minio.Client
	bucket string
	log    *log.Logger
}

// New connects to the configured object storage endpoint.
func New(cfg *config.Config) (*Store, error) {
	client, err := minio.New(cfg.Photos.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Photos.AccessKey, cfg.Photos.SecretKey, ""),
		Secure: cfg.Photos.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &Store{
		client: client,
		bucket: cfg.Photos.Bucket,
		log:    logger.Photos(),
	}, nil
}

// EnsureBucket creates the photo bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
	}
	s.log.Info("Created photo bucket", "bucket", s.bucket)
	return nil
}

// Upload stores one photo under the event's prefix and returns its object
// key.
func (s *Store) Upload(ctx context.Context, eventID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := eventID + "/" + uuid.NewString() + "-" + filename

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	s.log.Info("Uploaded photo", "event_id", eventID, "key", key, "size", size)
	return key, nil
}

// List returns all photos stored for an event.
func (s *Store) List(ctx context.Context, eventID string) ([]Photo, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    eventID + "/",
		Recursive: true,
	})

	photos := make([]Photo, 0)
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list photos for event %q: %w", eventID, object.Err)
		}
		photos = append(photos, Photo{
			Key:          object.Key,
			Size:         object.Size,
			ContentType:  object.ContentType,
			LastModified: object.LastModified,
		})
	}
	return photos, nil
}
