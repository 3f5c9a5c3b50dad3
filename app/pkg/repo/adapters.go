package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

/*
Adapters binding the gorm repos to the pipeline's collaborator interfaces.
Each call fetches the default connection, same as the handlers do.
*/

func db() *gorm.DB {
	return new(plugins.LangGoDB).Use("default").NewDB()
}

// GormSessionStore upload.SessionStore over the upload_session table.
type GormSessionStore struct{}

func NewGormSessionStore() *GormSessionStore { return &GormSessionStore{} }

func (s *GormSessionStore) Create(ctx context.Context, m *models.UploadSession) error {
	return NewUploadSessionRepo().Create(db().WithContext(ctx), m)
}

func (s *GormSessionStore) Get(ctx context.Context, uid int64) (*models.UploadSession, error) {
	sess, err := NewUploadSessionRepo().GetByUid(db().WithContext(ctx), uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upload.ErrSessionNotFound
	}
	return sess, err
}

func (s *GormSessionStore) CASState(ctx context.Context, uid int64, from, to string) (bool, error) {
	return NewUploadSessionRepo().CASState(db().WithContext(ctx), uid, from, to) > 0, nil
}

func (s *GormSessionStore) MarkFailed(ctx context.Context, uid int64, from, failCode string) (bool, error) {
	return NewUploadSessionRepo().MarkFailed(db().WithContext(ctx), uid, from, failCode) > 0, nil
}

func (s *GormSessionStore) Touch(ctx context.Context, uid int64, at time.Time) error {
	return NewUploadSessionRepo().Touch(db().WithContext(ctx), uid, at)
}

func (s *GormSessionStore) ListIdle(ctx context.Context, before time.Time) ([]models.UploadSession, error) {
	return NewUploadSessionRepo().FindIdleBefore(db().WithContext(ctx), before)
}

// GormChunkStore upload.ChunkStore over the chunk_record table.
type GormChunkStore struct{}

func NewGormChunkStore() *GormChunkStore { return &GormChunkStore{} }

func (s *GormChunkStore) Upsert(ctx context.Context, c *models.ChunkRecord) error {
	return NewChunkRecordRepo().Upsert(db().WithContext(ctx), c)
}

func (s *GormChunkStore) List(ctx context.Context, sessionUID int64) ([]models.ChunkRecord, error) {
	return NewChunkRecordRepo().FindBySessionUid(db().WithContext(ctx), sessionUID)
}

// GormArtifactStore upload.ArtifactStore over the artifact table.
type GormArtifactStore struct{}

func NewGormArtifactStore() *GormArtifactStore { return &GormArtifactStore{} }

func (s *GormArtifactStore) Create(ctx context.Context, a *models.Artifact) error {
	return NewArtifactRepo().Create(db().WithContext(ctx), a)
}

func (s *GormArtifactStore) GetBySession(ctx context.Context, sessionUID int64) (*models.Artifact, error) {
	return NewArtifactRepo().GetBySessionUid(db().WithContext(ctx), sessionUID)
}

// GormJobStore upload.JobStore over the processing_job table.
type GormJobStore struct{}

func NewGormJobStore() *GormJobStore { return &GormJobStore{} }

func (s *GormJobStore) Enqueue(ctx context.Context, job *models.ProcessingJob) error {
	return NewProcessingJobRepo().Create(db().WithContext(ctx), job)
}

func (s *GormJobStore) ListBySession(ctx context.Context, sessionUID int64) ([]models.ProcessingJob, error) {
	return NewProcessingJobRepo().FindBySessionUid(db().WithContext(ctx), sessionUID)
}
