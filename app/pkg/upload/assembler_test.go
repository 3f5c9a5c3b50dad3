package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackvault/trackvault/app/models"
)

func uploadAll(t *testing.T, r *rig, uid int64, data []byte, chunk int64) {
	t.Helper()
	ctx := context.Background()
	for off := int64(0); off < int64(len(data)); off += chunk {
		end := off + chunk
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		_, err := r.receiver.WriteChunk(ctx, uid, off, bytes.NewReader(data[off:end]), end-off)
		require.NoError(t, err)
	}
}

// Declared checksum matches the assembled bytes: the artifact is created,
// the audio fan-out and the part sweep are queued, and the session moves to
// processing.
func TestAssembleChecksumRoundTrip(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(10_000)
	sum := sha256.Sum256(data)
	sess := createSession(t, r, int64(len(data)), strings.ToUpper(hex.EncodeToString(sum[:])))
	uploadAll(t, r, sess.UID, data, 3000)

	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionProcessing, got.State)

	art, err := r.artifacts.GetBySession(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), art.Checksum, "stored digest is lowercase hex")
	assert.Equal(t, int64(len(data)), art.Size)

	for _, kind := range models.AudioJobKinds {
		assert.Equal(t, 1, r.jobs.countKind(kind), kind)
	}
	assert.Equal(t, 1, r.jobs.countKind(models.JobChunkSweep))
}

func TestAssembleChecksumMismatchFailsSession(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(5000)
	sess := createSession(t, r, int64(len(data)), strings.Repeat("00", 32))
	uploadAll(t, r, sess.UID, data, 2000)

	err := r.assembler.Assemble(ctx, sess.UID)
	require.ErrorIs(t, err, ErrChecksumMismatch)

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionFailed, got.State)
	assert.Equal(t, CodeChecksumMismatch, got.FailCode)

	_, err = r.artifacts.GetBySession(ctx, sess.UID)
	assert.Error(t, err, "no artifact on mismatch")
	assert.Equal(t, 1, r.jobs.countKind(models.JobChunkSweep), "parts still swept")
	assert.Equal(t, 0, r.jobs.countKind(models.JobMetadataExtract))
}

func TestAssembleWithoutDeclaredChecksum(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(5000)
	sess := createSession(t, r, int64(len(data)), "")
	uploadAll(t, r, sess.UID, data, 2000)

	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))
	art, err := r.artifacts.GetBySession(ctx, sess.UID)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), art.Checksum, "computed digest recorded even when undeclared")
}

func TestAssembleIdempotentAfterProcessing(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(5000)
	sess := createSession(t, r, int64(len(data)), "")
	uploadAll(t, r, sess.UID, data, 2000)

	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))
	require.NoError(t, r.assembler.Assemble(ctx, sess.UID), "re-run is a no-op")

	for _, kind := range models.AudioJobKinds {
		assert.Equal(t, 1, r.jobs.countKind(kind), kind)
	}
}

func TestAssembleRetriesPartialJobFanOut(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(5000)
	sess := createSession(t, r, int64(len(data)), "")
	uploadAll(t, r, sess.UID, data, 2000)

	// First run moves the session to processing but loses the job fan-out
	// to a flaky job store.
	r.jobs.failEnqueues = 1
	require.Error(t, r.assembler.Assemble(ctx, sess.UID))
	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	require.Equal(t, models.SessionProcessing, got.State)

	// The store recovers; a retry must backfill the missing jobs instead
	// of treating the processing session as already fanned out.
	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))
	for _, kind := range models.AudioJobKinds {
		assert.Equal(t, 1, r.jobs.countKind(kind), kind)
	}
	assert.Equal(t, 1, r.jobs.countKind(models.JobChunkSweep), "sweep survives the retry")
}

func TestAssembleRetryableStorageFault(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(5000)
	sess := createSession(t, r, int64(len(data)), "")
	uploadAll(t, r, sess.UID, data, 2000)

	r.blobs.failPuts = 1
	err := r.assembler.Assemble(ctx, sess.UID)
	require.ErrorIs(t, err, ErrStorageWrite)

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAssembling, got.State, "transient fault leaves session retryable")

	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))
	got, _ = r.sessions.Get(ctx, sess.UID)
	assert.Equal(t, models.SessionProcessing, got.State)
}
