package app

import (
	"time"

	"github.com/trackvault/trackvault/app/pkg/base"
	"github.com/trackvault/trackvault/app/pkg/event/dispatch"
	"github.com/trackvault/trackvault/app/pkg/event/handlers"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/app/pkg/storage"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/app/pkg/utils"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/config"
)

// Pipeline the wired upload machinery handed to the HTTP layer.
type Pipeline struct {
	Receiver *upload.Receiver
	Status   *upload.StatusReader
	Notifier *upload.Notifier
	Expirer  *upload.Expirer
}

// BuildPipeline wires the upload pipeline against the configured database
// and object storage, and registers the pieces the background dispatcher
// needs. Storage and snowflake must already be initialized.
func BuildPipeline(conf *config.Configuration, lgLogger *bootstrap.LangGoLogger) *Pipeline {
	notifier := upload.NewNotifier()
	sessions := repo.NewGormSessionStore()
	chunks := repo.NewGormChunkStore()
	artifacts := repo.NewGormArtifactStore()
	jobs := repo.NewGormJobStore()
	blobs := storage.NewBlobStore(storage.NewStorage().Storage)
	nextID := func() (int64, error) { return base.NewSnowFlake().NextId() }

	receiver := &upload.Receiver{
		Sessions:  sessions,
		Chunks:    chunks,
		Blobs:     blobs,
		Jobs:      jobs,
		Notifier:  notifier,
		Validator: &upload.Validator{MaxFileSize: conf.Upload.MaxFileSize},
		NextID:    nextID,
	}
	assembler := &upload.Assembler{
		Sessions:   sessions,
		Chunks:     chunks,
		Artifacts:  artifacts,
		Jobs:       jobs,
		Blobs:      blobs,
		Notifier:   notifier,
		NextID:     nextID,
		ScratchDir: utils.ScratchDir,
	}
	readiness := &upload.Readiness{
		Sessions: sessions,
		Jobs:     jobs,
		Notifier: notifier,
	}
	statusReader := &upload.StatusReader{
		Sessions: sessions,
		Chunks:   chunks,
		Jobs:     jobs,
	}
	expirer := &upload.Expirer{
		Sessions:    sessions,
		Jobs:        jobs,
		Notifier:    notifier,
		IdleTimeout: time.Duration(conf.Upload.IdleTimeoutMin) * time.Minute,
		Logger:      lgLogger.Logger,
	}

	handlers.Setup(assembler, blobs)
	dispatch.Setup(readiness)

	return &Pipeline{
		Receiver: receiver,
		Status:   statusReader,
		Notifier: notifier,
		Expirer:  expirer,
	}
}
