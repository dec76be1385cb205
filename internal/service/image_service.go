package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ErrStorageUnavailable is returned when no object store is configured.
var ErrStorageUnavailable = errors.New("object storage not configured")

// ImageService stores component images in MinIO and hands back the object
// URL recorded on the component row.
type ImageService struct {
	client *minio.Client
	bucket string
}

func NewImageService(client *minio.Client, bucket string) *ImageService {
	return &ImageService{client: client, bucket: bucket}
}

// Upload writes one image object under components/ and returns its URL.
func (s *ImageService) Upload(ctx context.Context, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if s.client == nil {
		return "", ErrStorageUnavailable
	}

	objectName := fmt.Sprintf("components/%s/%s%s",
		time.Now().Format("2006-01"),
		uuid.New().String()[:8],
		path.Ext(fileName),
	)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectName), nil
}
