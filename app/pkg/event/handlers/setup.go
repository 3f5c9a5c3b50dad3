package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/app/pkg/utils"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

// Handlers register themselves by kind in their init funcs; the
// collaborators they run against are wired here once at startup.
var (
	assembler *upload.Assembler
	blobs     upload.BlobStore
)

// Setup injects the assembled pipeline pieces. Must run before the
// dispatcher starts pulling jobs.
func Setup(a *upload.Assembler, b upload.BlobStore) {
	assembler = a
	blobs = b
}

// loadJob fetches the claimed job row.
func loadJob(jobID int64) (*models.ProcessingJob, error) {
	lgDB := new(plugins.LangGoDB).Use("default").NewDB()
	job, err := repo.NewProcessingJobRepo().GetByID(lgDB, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %d: %w", jobID, err)
	}
	return job, nil
}

// fetchArtifactToScratch downloads the job's artifact into the scratch
// dir so the decoders get the io.ReadSeeker they need. The caller removes
// the file via the returned cleanup.
func fetchArtifactToScratch(ctx context.Context, job *models.ProcessingJob) (*models.Artifact, string, func(), error) {
	lgDB := new(plugins.LangGoDB).Use("default").NewDB()
	art, err := repo.NewArtifactRepo().GetByUid(lgDB, job.ArtifactUID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("load artifact %d: %w", job.ArtifactUID, err)
	}

	if err := os.MkdirAll(utils.ScratchDir, 0o755); err != nil {
		return nil, "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	f, err := os.CreateTemp(utils.ScratchDir, fmt.Sprintf("artifact-%d-*%s", art.UID, filepath.Ext(art.StorageName)))
	if err != nil {
		return nil, "", nil, fmt.Errorf("create scratch file: %w", err)
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}

	rc, err := blobs.Get(ctx, art.Bucket, art.StorageName)
	if err != nil {
		cleanup()
		return nil, "", nil, fmt.Errorf("fetch artifact %s: %w", art.StorageName, err)
	}
	defer rc.Close()
	if _, err := io.Copy(f, rc); err != nil {
		cleanup()
		return nil, "", nil, fmt.Errorf("download artifact %s: %w", art.StorageName, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return art, f.Name(), func() { _ = os.Remove(f.Name()) }, nil
}
