package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/audio"
	"github.com/trackvault/trackvault/app/pkg/event"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/app/pkg/utils"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

func init() {
	event.NewEventsHandler().RegHandler(models.JobPreview, handlePreview)
}

// handlePreview cuts the faded storefront clip and stores it next to the
// other previews. Best-effort, same as waveform.
func handlePreview(ctx context.Context, jobID int64) error {
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

	out, err := os.CreateTemp(utils.ScratchDir, fmt.Sprintf("preview-%d-*.wav", art.UID))
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
		_ = os.Remove(out.Name())
	}()

	conf := bootstrap.NewConfig("").Upload
	if err := audio.RenderPreview(stream, out, conf.PreviewSeconds, conf.PreviewFadeMsec); err != nil {
		return fmt.Errorf("render preview for artifact %d: %w", art.UID, err)
	}

	stat, err := out.Stat()
	if err != nil {
		return err
	}
	if _, err := out.Seek(0, 0); err != nil {
		return err
	}
	name := fmt.Sprintf("%d_preview.wav", art.UID)
	addr, err := blobs.Put(ctx, utils.BucketPreviews, name, out, stat.Size(), "audio/wav")
	if err != nil {
		return fmt.Errorf("store preview for artifact %d: %w", art.UID, err)
	}

	lgDB := new(plugins.LangGoDB).Use("default").NewDB()
	meta := &models.TrackMeta{
		ArtifactUID:    art.UID,
		PreviewBucket:  utils.BucketPreviews,
		PreviewName:    name,
		PreviewAddress: addr,
	}
	return repo.NewTrackMetaRepo().Upsert(lgDB, meta, []string{"preview_bucket", "preview_name", "preview_address"})
}
