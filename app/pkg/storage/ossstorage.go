package storage

import (
	"fmt"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

// OssStorage Aliyun OSS storage
type OssStorage struct {
	client *oss.Client
}

// NewOssStorage .
func NewOssStorage() *OssStorage {
	return &OssStorage{
		client: new(plugins.LangGoOss).NewOss(),
	}
}

// MakeBucket .
func (s *OssStorage) MakeBucket(bucket string) error {
	exist, err := s.client.IsBucketExist(bucket)
	if err != nil {
		return err
	}
	if exist {
		return nil
	}
	return s.client.CreateBucket(bucket)
}

// GetObject .
func (s *OssStorage) GetObject(bucket, object string) (io.ReadCloser, error) {
	bkt, err := s.client.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	return bkt.GetObject(object)
}

// PutObject .
func (s *OssStorage) PutObject(bucket, object string, reader io.Reader, size int64, contentType string) (string, error) {
	bkt, err := s.client.Bucket(bucket)
	if err != nil {
		return "", err
	}
	if err := bkt.PutObject(object, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.%s/%s", bucket, bootstrap.NewConfig("").Oss.EndPoint, object), nil
}

// StatObject .
func (s *OssStorage) StatObject(bucket, object string) (int64, error) {
	bkt, err := s.client.Bucket(bucket)
	if err != nil {
		return 0, err
	}
	meta, err := bkt.GetObjectDetailedMeta(object)
	if err != nil {
		return 0, err
	}
	var size int64
	_, err = fmt.Sscanf(meta.Get("Content-Length"), "%d", &size)
	return size, err
}

// DeleteObject .
func (s *OssStorage) DeleteObject(bucket, object string) error {
	bkt, err := s.client.Bucket(bucket)
	if err != nil {
		return err
	}
	return bkt.DeleteObject(object)
}
