package upload

import (
	"context"
	"io"
	"time"

	"github.com/trackvault/trackvault/app/models"
)

// BlobStore is the byte-storage collaborator. Production code adapts the
// configured object storage backend; tests use an in-memory map.
type BlobStore interface {
	Put(ctx context.Context, bucket, name string, reader io.Reader, size int64, contentType string) (address string, err error)
	Get(ctx context.Context, bucket, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, name string) error
}

// SessionStore persists upload sessions. CASState and MarkFailed are
// conditional updates: they report whether the transition was applied so a
// racing caller can observe it lost.
type SessionStore interface {
	Create(ctx context.Context, s *models.UploadSession) error
	Get(ctx context.Context, uid int64) (*models.UploadSession, error)
	CASState(ctx context.Context, uid int64, from, to string) (bool, error)
	MarkFailed(ctx context.Context, uid int64, from, failCode string) (bool, error)
	Touch(ctx context.Context, uid int64, at time.Time) error
	ListIdle(ctx context.Context, before time.Time) ([]models.UploadSession, error)
}

// ChunkStore records received byte ranges. Upsert must be keyed by
// (session uid, byte offset) so a duplicate write replaces, never duplicates.
type ChunkStore interface {
	Upsert(ctx context.Context, c *models.ChunkRecord) error
	List(ctx context.Context, sessionUID int64) ([]models.ChunkRecord, error)
}

type ArtifactStore interface {
	Create(ctx context.Context, a *models.Artifact) error
	GetBySession(ctx context.Context, sessionUID int64) (*models.Artifact, error)
}

// JobStore enqueues processing jobs for the background dispatcher.
type JobStore interface {
	Enqueue(ctx context.Context, job *models.ProcessingJob) error
	ListBySession(ctx context.Context, sessionUID int64) ([]models.ProcessingJob, error)
}

// IDGen hands out cluster-unique ids, snowflake in production.
type IDGen func() (int64, error)
