package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/event"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

func init() {
	event.NewEventsHandler().RegPreProcess(models.JobChunkSweep, preProcessChunkSweep)
	event.NewEventsHandler().RegHandler(models.JobChunkSweep, handleChunkSweep)
}

func preProcessChunkSweep(jobID int64) bool {
	job, err := loadJob(jobID)
	if err != nil {
		return false
	}
	var msg models.SweepMsg
	return json.Unmarshal([]byte(job.ExtraData), &msg) == nil
}

// handleChunkSweep deletes the part objects of a settled session. Runs
// after assembly, after a checksum failure and after expiry.
func handleChunkSweep(ctx context.Context, jobID int64) error {
	job, err := loadJob(jobID)
	if err != nil {
		return err
	}
	var msg models.SweepMsg
	if err := json.Unmarshal([]byte(job.ExtraData), &msg); err != nil {
		return fmt.Errorf("decode sweep payload: %w", err)
	}

	lgDB := new(plugins.LangGoDB).Use("default").NewDB()
	chunks, err := repo.NewChunkRecordRepo().FindBySessionUid(lgDB, msg.SessionUID)
	if err != nil {
		return fmt.Errorf("list parts for session %d: %w", msg.SessionUID, err)
	}
	for _, c := range chunks {
		if err := blobs.Delete(ctx, c.Bucket, c.StorageName); err != nil {
			return fmt.Errorf("delete part %s: %w", c.StorageName, err)
		}
	}
	return repo.NewChunkRecordRepo().DeleteBySessionUid(lgDB, msg.SessionUID)
}
