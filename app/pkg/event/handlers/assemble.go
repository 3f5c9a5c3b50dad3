package handlers

import (
	"context"
	"errors"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/event"
	"github.com/trackvault/trackvault/app/pkg/upload"
)

func init() {
	event.NewEventsHandler().RegHandler(models.JobAssemble, handleAssemble)
}

func handleAssemble(ctx context.Context, jobID int64) error {
	job, err := loadJob(jobID)
	if err != nil {
		return err
	}
	err = assembler.Assemble(ctx, job.SessionUID)
	if errors.Is(err, upload.ErrChecksumMismatch) {
		// Terminal: the session is already marked failed, retrying would
		// reproduce the same digest.
		return nil
	}
	return err
}
