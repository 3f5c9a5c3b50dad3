package storage

import (
	"io"
	"os"
	"path"

	"github.com/trackvault/trackvault/bootstrap"
)

// LocalStorage filesystem-backed storage for single-node deployments and tests.
type LocalStorage struct {
	RootPath string
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		RootPath: bootstrap.NewConfig("").Local.RootPath,
	}
}

// MakeBucket .
func (s *LocalStorage) MakeBucket(bucket string) error {
	dirName := path.Join(s.RootPath, bucket)
	if _, err := os.Stat(dirName); os.IsNotExist(err) {
		if err := os.MkdirAll(dirName, 0755); err != nil {
			return err
		}
	}
	return nil
}

// GetObject .
func (s *LocalStorage) GetObject(bucket, object string) (io.ReadCloser, error) {
	objectPath := path.Join(s.RootPath, bucket, object)
	return os.Open(objectPath)
}

// PutObject .
func (s *LocalStorage) PutObject(bucket, object string, reader io.Reader, size int64, contentType string) (string, error) {
	objectPath := path.Join(s.RootPath, bucket, object)
	file, err := os.Create(objectPath)
	if err != nil {
		return "", err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	if _, err = io.Copy(file, reader); err != nil {
		return "", err
	}
	return objectPath, nil
}

// StatObject .
func (s *LocalStorage) StatObject(bucket, object string) (int64, error) {
	info, err := os.Stat(path.Join(s.RootPath, bucket, object))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// DeleteObject .
func (s *LocalStorage) DeleteObject(bucket, object string) error {
	objectPath := path.Join(s.RootPath, bucket, object)
	return os.RemoveAll(objectPath)
}
