package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"
	"github.com/trackvault/trackvault/bootstrap"
)

// CosStorage Tencent COS storage
type CosStorage struct {
	Appid     string
	Region    string
	SecretId  string
	SecretKey string
}

// NewCosStorage .
func NewCosStorage() *CosStorage {
	return &CosStorage{
		Appid:     bootstrap.NewConfig("").Cos.Appid,
		Region:    bootstrap.NewConfig("").Cos.Region,
		SecretId:  bootstrap.NewConfig("").Cos.SecretId,
		SecretKey: bootstrap.NewConfig("").Cos.SecretKey,
	}
}

func (s *CosStorage) bucketURL(bucket string) string {
	return fmt.Sprintf("https://%s-%s.cos.%s.myqcloud.com", bucket, s.Appid, s.Region)
}

func (s *CosStorage) client(bucket string) *cos.Client {
	u, _ := url.Parse(s.bucketURL(bucket))
	b := &cos.BaseURL{BucketURL: u}
	return cos.NewClient(b, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  s.SecretId,
			SecretKey: s.SecretKey,
		},
	})
}

// MakeBucket .
func (s *CosStorage) MakeBucket(bucket string) error {
	client := s.client(bucket)
	ok, err := client.Bucket.IsExist(context.Background())
	if err == nil && ok {
		return nil
	} else if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
	defer cancel()
	resp, err := client.Bucket.Put(ctx, nil)
	if err != nil && resp.StatusCode != 409 {
		return err
	}
	return nil
}

// GetObject .
func (s *CosStorage) GetObject(bucket, object string) (io.ReadCloser, error) {
	resp, err := s.client(bucket).Object.Get(context.Background(), object, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PutObject .
func (s *CosStorage) PutObject(bucket, object string, reader io.Reader, size int64, contentType string) (string, error) {
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType:   contentType,
			ContentLength: size,
		},
	}
	if _, err := s.client(bucket).Object.Put(context.Background(), object, reader, opt); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.bucketURL(bucket), object), nil
}

// StatObject .
func (s *CosStorage) StatObject(bucket, object string) (int64, error) {
	resp, err := s.client(bucket).Object.Head(context.Background(), object, nil)
	if err != nil {
		return 0, err
	}
	return resp.ContentLength, nil
}

// DeleteObject .
func (s *CosStorage) DeleteObject(bucket, object string) error {
	_, err := s.client(bucket).Object.Delete(context.Background(), object)
	return err
}
