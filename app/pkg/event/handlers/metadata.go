package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/audio"
	"github.com/trackvault/trackvault/app/pkg/event"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

func init() {
	event.NewEventsHandler().RegHandler(models.JobMetadataExtract, handleMetadataExtract)
}

// handleMetadataExtract probes the artifact for tags and stream
// parameters. The readiness policy treats this kind as required.
func handleMetadataExtract(ctx context.Context, jobID int64) error {
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

	info, err := audio.Probe(f, art.ContentType, art.Size)
	if err != nil {
		return fmt.Errorf("probe artifact %d: %w", art.UID, err)
	}

	lgDB := new(plugins.LangGoDB).Use("default").NewDB()
	meta := &models.TrackMeta{
		ArtifactUID: art.UID,
		DurationSec: info.DurationSec,
		SampleRate:  info.SampleRate,
		BitRate:     info.BitRate,
		Channels:    info.Channels,
		TagTitle:    info.Title,
		TagArtist:   info.Artist,
		TagAlbum:    info.Album,
	}
	return repo.NewTrackMetaRepo().Upsert(lgDB, meta,
		[]string{"duration_sec", "sample_rate", "bit_rate", "channels", "tag_title", "tag_artist", "tag_album"})
}
