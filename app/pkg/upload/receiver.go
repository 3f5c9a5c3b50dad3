package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/base"
	"github.com/trackvault/trackvault/app/pkg/utils"
)

const sniffLen = 512

// Receiver owns the session lifecycle up to the assembling hand-off:
// session creation, chunk persistence, coverage bookkeeping and the
// exactly-once transition into assembly.
type Receiver struct {
	Sessions  SessionStore
	Chunks    ChunkStore
	Blobs     BlobStore
	Jobs      JobStore
	Notifier  *Notifier
	Validator *Validator
	NextID    IDGen

	locks sessionLocks
}

// CreateSession validates the declaration and opens a new session in the
// created state.
func (r *Receiver) CreateSession(ctx context.Context, req *models.SessionCreateReq) (*models.UploadSession, error) {
	contentType := strings.ToLower(req.ContentType)
	if err := r.Validator.ValidateDeclaration(req.FileName, contentType, req.TotalSize, req.Checksum); err != nil {
		return nil, err
	}
	uid, err := r.NextID()
	if err != nil {
		return nil, fmt.Errorf("allocate session uid: %w", err)
	}
	now := time.Now()
	sess := &models.UploadSession{
		UID:          uid,
		OwnerID:      req.OwnerID,
		AlbumID:      req.AlbumID,
		FileName:     req.FileName,
		ContentType:  contentType,
		TotalSize:    req.TotalSize,
		Checksum:     strings.ToLower(req.Checksum),
		State:        models.SessionCreated,
		Bucket:       utils.BucketParts,
		LastActivity: &now,
	}
	if err := r.Sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// WriteChunk durably stores one byte range. The blob write runs outside the
// session lock; only the coverage bookkeeping is serialized. A replay of an
// identical range is accepted and changes nothing.
func (r *Receiver) WriteChunk(ctx context.Context, uid, offset int64, body io.Reader, length int64) (Coverage, error) {
	sess, err := r.Sessions.Get(ctx, uid)
	if err != nil {
		return Coverage{}, err
	}
	if err := writableState(sess.State); err != nil {
		return Coverage{}, err
	}
	if length <= 0 || offset < 0 || offset+length > sess.TotalSize {
		return Coverage{}, &Error{Code: CodeChunkOverlap,
			Message: fmt.Sprintf("range [%d,%d) is outside file of %d bytes", offset, offset+length, sess.TotalSize)}
	}

	if offset == 0 {
		head := make([]byte, sniffLen)
		n, rerr := io.ReadFull(body, head)
		if rerr != nil && rerr != io.ErrUnexpectedEOF && rerr != io.EOF {
			return Coverage{}, fmt.Errorf("read chunk body: %w", rerr)
		}
		if err := r.Validator.SniffLeading(sess.ContentType, head[:n]); err != nil {
			return Coverage{}, err
		}
		body = io.MultiReader(bytes.NewReader(head[:n]), body)
	}

	hr := base.NewHashingReader(body)
	name := partName(uid, offset)
	if _, err := r.Blobs.Put(ctx, sess.Bucket, name, io.LimitReader(hr, length), length, sess.ContentType); err != nil {
		return Coverage{}, storageWriteErr(err)
	}

	unlock := r.locks.lock(uid)
	defer unlock()

	// Re-read under the lock: an expiry sweep may have won the race while
	// the blob write was in flight.
	sess, err = r.Sessions.Get(ctx, uid)
	if err != nil {
		return Coverage{}, err
	}
	if err := writableState(sess.State); err != nil {
		return Coverage{}, err
	}

	existing, err := r.Chunks.List(ctx, uid)
	if err != nil {
		return Coverage{}, fmt.Errorf("list chunks: %w", err)
	}
	if err := checkWrite(existing, offset, length, sess.TotalSize); err != nil {
		return Coverage{}, err
	}

	now := time.Now()
	rec := &models.ChunkRecord{
		SessionUID:  uid,
		ByteOffset:  offset,
		ByteLength:  length,
		Bucket:      sess.Bucket,
		StorageName: name,
		PartSum:     hr.Sum(),
		ReceivedAt:  &now,
	}
	if err := r.Chunks.Upsert(ctx, rec); err != nil {
		return Coverage{}, fmt.Errorf("persist chunk record: %w", err)
	}
	if err := r.Sessions.Touch(ctx, uid, now); err != nil {
		return Coverage{}, fmt.Errorf("touch session: %w", err)
	}
	if sess.State == models.SessionCreated {
		// First accepted write moves the session along; losing this race
		// to a concurrent writer is fine.
		if _, err := r.Sessions.CASState(ctx, uid, models.SessionCreated, models.SessionReceiving); err != nil {
			return Coverage{}, err
		}
	}

	cov := coverageWith(existing, rec, sess.TotalSize)
	state := models.SessionReceiving
	if cov.Complete() {
		fired, err := r.fireAssembly(ctx, uid)
		if err != nil {
			return cov, err
		}
		if fired {
			state = models.SessionAssembling
		}
	}
	r.Notifier.Publish(Event{SessionUID: uid, State: state, ReceivedBytes: cov.ReceivedBytes, TotalSize: cov.TotalSize, At: time.Now()})
	return cov, nil
}

// Complete asks for assembly explicitly. With full coverage it is an
// idempotent nudge; with a gap it reports exactly which ranges are held so
// the client can diff against what it sent.
func (r *Receiver) Complete(ctx context.Context, uid int64) (string, Coverage, error) {
	unlock := r.locks.lock(uid)
	defer unlock()

	sess, err := r.Sessions.Get(ctx, uid)
	if err != nil {
		return "", Coverage{}, err
	}
	switch sess.State {
	case models.SessionExpired:
		return sess.State, Coverage{}, ErrSessionExpired
	case models.SessionFailed:
		return sess.State, Coverage{}, &Error{Code: sess.FailCode, Message: "session already failed"}
	case models.SessionAssembling, models.SessionProcessing, models.SessionReady:
		return sess.State, Coverage{TotalSize: sess.TotalSize, ReceivedBytes: sess.TotalSize}, nil
	}

	chunks, err := r.Chunks.List(ctx, uid)
	if err != nil {
		return "", Coverage{}, fmt.Errorf("list chunks: %w", err)
	}
	cov := BuildCoverage(chunks, sess.TotalSize)
	if !cov.Complete() {
		return sess.State, cov, ErrCoverageGap
	}
	if _, err := r.fireAssembly(ctx, uid); err != nil {
		return sess.State, cov, err
	}
	r.Notifier.Publish(Event{SessionUID: uid, State: models.SessionAssembling, ReceivedBytes: cov.ReceivedBytes, TotalSize: cov.TotalSize, At: time.Now()})
	return models.SessionAssembling, cov, nil
}

// fireAssembly performs the receiving(or created)->assembling transition and
// enqueues the assemble job. The state swap is the exactly-once gate: only
// the winner enqueues.
func (r *Receiver) fireAssembly(ctx context.Context, uid int64) (bool, error) {
	swapped, err := r.Sessions.CASState(ctx, uid, models.SessionReceiving, models.SessionAssembling)
	if err != nil {
		return false, err
	}
	if !swapped {
		// A single-chunk upload can still be in created if the CAS above
		// in WriteChunk lost its race window.
		swapped, err = r.Sessions.CASState(ctx, uid, models.SessionCreated, models.SessionAssembling)
		if err != nil || !swapped {
			return false, err
		}
	}
	extra, _ := json.Marshal(models.AssembleMsg{SessionUID: uid})
	job := &models.ProcessingJob{
		SessionUID: uid,
		Kind:       models.JobAssemble,
		Status:     models.JobStatusQueued,
		ExtraData:  string(extra),
	}
	if err := r.Jobs.Enqueue(ctx, job); err != nil {
		return true, fmt.Errorf("enqueue assemble job: %w", err)
	}
	return true, nil
}

func writableState(state string) error {
	switch state {
	case models.SessionCreated, models.SessionReceiving:
		return nil
	case models.SessionExpired:
		return ErrSessionExpired
	default:
		return ErrSessionClosed
	}
}

func coverageWith(existing []models.ChunkRecord, rec *models.ChunkRecord, totalSize int64) Coverage {
	merged := existing
	replay := false
	for _, c := range existing {
		if c.ByteOffset == rec.ByteOffset {
			replay = true
			break
		}
	}
	if !replay {
		merged = append(append([]models.ChunkRecord{}, existing...), *rec)
	}
	return BuildCoverage(merged, totalSize)
}

func partName(uid, offset int64) string {
	return fmt.Sprintf("%d_%d", uid, offset)
}
