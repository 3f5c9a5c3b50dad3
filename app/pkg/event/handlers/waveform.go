package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/audio"
	"github.com/trackvault/trackvault/app/pkg/event"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

func init() {
	event.NewEventsHandler().RegHandler(models.JobWaveform, handleWaveform)
}

// handleWaveform renders the normalized loudness points for the artifact.
// Best-effort: a failure here never blocks readiness.
func handleWaveform(ctx context.Context, jobID int64) error {
	job, err := loadJob(jobID)
	if err != nil {
		return err
	}
	art, path, cleanup, err := fetchArtifactToScratch(ctx, job)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stream, err := audio.Open(art.ContentType, f)
	if err != nil {
		return fmt.Errorf("decode artifact %d: %w", art.UID, err)
	}
	points, err := audio.Waveform(stream, bootstrap.NewConfig("").Upload.WaveformPoints)
	if err != nil {
		return fmt.Errorf("compute waveform for artifact %d: %w", art.UID, err)
	}
	encoded, err := json.Marshal(points)
	if err != nil {
		return err
	}

	lgDB := new(plugins.LangGoDB).Use("default").NewDB()
	meta := &models.TrackMeta{
		ArtifactUID:  art.UID,
		WaveformJSON: string(encoded),
	}
	return repo.NewTrackMetaRepo().Upsert(lgDB, meta, []string{"waveform_json"})
}
