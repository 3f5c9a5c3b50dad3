package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

// MinIOStorage minio-backed storage
type MinIOStorage struct {
	client *minio.Client
}

// NewMinIOStorage .
func NewMinIOStorage() *MinIOStorage {
	client := new(plugins.LangGoMinio).NewMinio()
	return &MinIOStorage{
		client: client,
	}
}

// MakeBucket .
func (s *MinIOStorage) MakeBucket(bucket string) error {
	ctx := context.Background()
	isExist, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if isExist {
		return nil
	}
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

// GetObject the returned object is a stream, caller closes it.
func (s *MinIOStorage) GetObject(bucket, object string) (io.ReadCloser, error) {
	ctx := context.Background()
	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// PutObject .
func (s *MinIOStorage) PutObject(bucket, object string, reader io.Reader, size int64, contentType string) (string, error) {
	ctx := context.Background()
	_, err := s.client.PutObject(ctx, bucket, object, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", bootstrap.NewConfig("").Minio.EndPoint, bucket, object), nil
}

// StatObject .
func (s *MinIOStorage) StatObject(bucket, object string) (int64, error) {
	ctx := context.Background()
	objectInfo, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return 0, err
	}
	return objectInfo.Size, nil
}

// DeleteObject .
func (s *MinIOStorage) DeleteObject(bucket, object string) error {
	ctx := context.Background()
	return s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
}
