package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"time"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/base"
	"github.com/trackvault/trackvault/app/pkg/utils"
)

// Assembler stitches the parts of a fully covered session into the single
// track artifact. It streams part by part through a scratch file, never
// holding more than one copy buffer in memory, and hashes as it writes.
type Assembler struct {
	Sessions   SessionStore
	Chunks     ChunkStore
	Artifacts  ArtifactStore
	Jobs       JobStore
	Blobs      BlobStore
	Notifier   *Notifier
	NextID     IDGen
	ScratchDir string
}

// Assemble runs the assembling phase for one session. It is safe to call
// again after a partial failure: a ready or terminal session is a no-op,
// a processing session gets any missing jobs re-enqueued, and a checksum
// mismatch is terminal rather than retried.
func (a *Assembler) Assemble(ctx context.Context, sessionUID int64) error {
	sess, err := a.Sessions.Get(ctx, sessionUID)
	if err != nil {
		return err
	}
	switch sess.State {
	case models.SessionAssembling:
	case models.SessionProcessing:
		// A previous run may have died between the state change and the
		// job fan-out. Re-enqueue whatever is missing so the session can
		// still reach ready.
		artifact, err := a.Artifacts.GetBySession(ctx, sessionUID)
		if err != nil {
			return fmt.Errorf("load artifact for session %d: %w", sessionUID, err)
		}
		return a.ensureFanOut(ctx, sess, artifact)
	case models.SessionReady:
		return nil
	case models.SessionFailed, models.SessionExpired:
		return nil
	default:
		return fmt.Errorf("session %d in state %s cannot assemble", sessionUID, sess.State)
	}

	chunks, err := a.Chunks.List(ctx, sessionUID)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ByteOffset < chunks[j].ByteOffset })
	if err := verifyContiguous(chunks, sess.TotalSize); err != nil {
		return err
	}

	if err := os.MkdirAll(a.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	scratch, err := os.CreateTemp(a.ScratchDir, fmt.Sprintf("assemble-%d-*", sessionUID))
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	defer func() {
		_ = scratch.Close()
		_ = os.Remove(scratch.Name())
	}()

	hash := sha256.New()
	sink := io.MultiWriter(scratch, hash)
	for _, c := range chunks {
		rc, err := a.Blobs.Get(ctx, c.Bucket, c.StorageName)
		if err != nil {
			return fmt.Errorf("fetch part %s: %w", c.StorageName, err)
		}
		n, err := io.Copy(sink, rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("copy part %s: %w", c.StorageName, err)
		}
		if n != c.ByteLength {
			return fmt.Errorf("part %s is %d bytes, recorded %d", c.StorageName, n, c.ByteLength)
		}
	}

	sum := hex.EncodeToString(hash.Sum(nil))
	if sess.Checksum != "" && !base.SameChecksum(sum, sess.Checksum) {
		if err := a.failChecksum(ctx, sess); err != nil {
			return err
		}
		return ErrChecksumMismatch
	}

	artUID, err := a.NextID()
	if err != nil {
		return fmt.Errorf("allocate artifact uid: %w", err)
	}
	name := fmt.Sprintf("%d%s", artUID, path.Ext(sess.FileName))
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind scratch: %w", err)
	}
	addr, err := a.Blobs.Put(ctx, utils.BucketTracks, name, scratch, sess.TotalSize, sess.ContentType)
	if err != nil {
		return storageWriteErr(err)
	}
	artifact := &models.Artifact{
		UID:         artUID,
		SessionUID:  sessionUID,
		Bucket:      utils.BucketTracks,
		StorageName: name,
		Address:     addr,
		Size:        sess.TotalSize,
		Checksum:    sum,
		ContentType: sess.ContentType,
	}
	if err := a.Artifacts.Create(ctx, artifact); err != nil {
		return fmt.Errorf("persist artifact: %w", err)
	}

	if _, err := a.Sessions.CASState(ctx, sessionUID, models.SessionAssembling, models.SessionProcessing); err != nil {
		return err
	}
	if err := a.ensureFanOut(ctx, sess, artifact); err != nil {
		return err
	}
	a.Notifier.Publish(Event{SessionUID: sessionUID, State: models.SessionProcessing, ReceivedBytes: sess.TotalSize, TotalSize: sess.TotalSize, At: time.Now()})
	return nil
}

// ensureFanOut enqueues the per-kind audio jobs and the chunk sweep,
// skipping any kind a previous attempt already persisted. Runs both on
// the first pass after the state change and on a retry, so a partial
// enqueue never strands the session in processing.
func (a *Assembler) ensureFanOut(ctx context.Context, sess *models.UploadSession, artifact *models.Artifact) error {
	existing, err := a.Jobs.ListBySession(ctx, sess.UID)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, j := range existing {
		have[j.Kind] = true
	}
	for _, kind := range models.AudioJobKinds {
		if have[kind] {
			continue
		}
		job := &models.ProcessingJob{
			SessionUID:  sess.UID,
			ArtifactUID: artifact.UID,
			Kind:        kind,
			Status:      models.JobStatusQueued,
		}
		if err := a.Jobs.Enqueue(ctx, job); err != nil {
			return fmt.Errorf("enqueue %s job: %w", kind, err)
		}
	}
	if !have[models.JobChunkSweep] {
		if err := a.enqueueSweep(ctx, sess.UID); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) failChecksum(ctx context.Context, sess *models.UploadSession) error {
	if _, err := a.Sessions.MarkFailed(ctx, sess.UID, models.SessionAssembling, CodeChecksumMismatch); err != nil {
		return err
	}
	if err := a.enqueueSweep(ctx, sess.UID); err != nil {
		return err
	}
	a.Notifier.Publish(Event{SessionUID: sess.UID, State: models.SessionFailed, FailCode: CodeChecksumMismatch, ReceivedBytes: sess.TotalSize, TotalSize: sess.TotalSize, At: time.Now()})
	return nil
}

func (a *Assembler) enqueueSweep(ctx context.Context, sessionUID int64) error {
	extra, _ := json.Marshal(models.SweepMsg{SessionUID: sessionUID})
	job := &models.ProcessingJob{
		SessionUID: sessionUID,
		Kind:       models.JobChunkSweep,
		Status:     models.JobStatusQueued,
		ExtraData:  string(extra),
	}
	if err := a.Jobs.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue sweep job: %w", err)
	}
	return nil
}

func verifyContiguous(sorted []models.ChunkRecord, totalSize int64) error {
	var next int64
	for _, c := range sorted {
		if c.ByteOffset != next {
			return fmt.Errorf("coverage gap at byte %d", next)
		}
		next += c.ByteLength
	}
	if next != totalSize {
		return fmt.Errorf("coverage ends at %d of %d bytes", next, totalSize)
	}
	return nil
}
