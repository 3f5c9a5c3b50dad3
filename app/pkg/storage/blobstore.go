package storage

import (
	"context"
	"io"
)

// BlobStore adapts the configured backend to the pipeline's blob
// interface. The backend SDKs carry their own timeouts, so the context is
// accepted for interface fit and honored where the SDK allows.
type BlobStore struct {
	s CustomStorage
}

func NewBlobStore(s CustomStorage) *BlobStore {
	return &BlobStore{s: s}
}

func (b *BlobStore) Put(_ context.Context, bucket, name string, reader io.Reader, size int64, contentType string) (string, error) {
	return b.s.PutObject(bucket, name, reader, size, contentType)
}

func (b *BlobStore) Get(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	return b.s.GetObject(bucket, name)
}

func (b *BlobStore) Delete(_ context.Context, bucket, name string) error {
	return b.s.DeleteObject(bucket, name)
}
