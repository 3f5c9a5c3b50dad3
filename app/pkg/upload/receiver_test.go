package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackvault/trackvault/app/models"
)

// trackBytes builds a body with a valid MPEG magic so the offset-0 sniff
// accepts it.
func trackBytes(size int64) []byte {
	data := make([]byte, size)
	rand.New(rand.NewSource(42)).Read(data)
	copy(data, "ID3")
	return data
}

func createSession(t *testing.T, r *rig, size int64, checksum string) *models.UploadSession {
	t.Helper()
	sess, err := r.receiver.CreateSession(context.Background(), &models.SessionCreateReq{
		FileName:    "track.mp3",
		TotalSize:   size,
		ContentType: "audio/mpeg",
		Checksum:    checksum,
		OwnerID:     "artist-1",
	})
	require.NoError(t, err)
	require.Equal(t, models.SessionCreated, sess.State)
	return sess
}

func TestCreateSessionRejectsBadDeclaration(t *testing.T) {
	r := newRig()
	_, err := r.receiver.CreateSession(context.Background(), &models.SessionCreateReq{
		FileName: "t.bin", TotalSize: 10, ContentType: "application/zip", OwnerID: "a",
	})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

// Ten 1 MiB chunks sent in reverse order: every write is accepted, the
// session only assembles after the final (first) chunk, and the assembled
// bytes match the original file.
func TestReverseOrderUpload(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	const chunk = int64(1 << 20)
	const n = 10
	data := trackBytes(n * chunk)
	sum := sha256.Sum256(data)
	sess := createSession(t, r, n*chunk, hex.EncodeToString(sum[:]))

	for i := n - 1; i >= 0; i-- {
		off := int64(i) * chunk
		cov, err := r.receiver.WriteChunk(ctx, sess.UID, off, bytes.NewReader(data[off:off+chunk]), chunk)
		require.NoError(t, err, "chunk at offset %d", off)
		assert.Equal(t, int64(n-i)*chunk, cov.ReceivedBytes)
	}

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAssembling, got.State)
	assert.Equal(t, 1, r.jobs.countKind(models.JobAssemble))

	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))
	got, err = r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionProcessing, got.State)

	art, err := r.artifacts.GetBySession(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), art.Checksum)
	rc, err := r.blobs.Get(ctx, art.Bucket, art.StorageName)
	require.NoError(t, err)
	assembled := new(bytes.Buffer)
	_, err = assembled.ReadFrom(rc)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, assembled.Bytes()))
}

func TestWriteChunkIdempotentReplay(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(300)
	sess := createSession(t, r, 300, "")

	cov, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), cov.ReceivedBytes)

	// Same range again: accepted, coverage unchanged.
	cov, err = r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), cov.ReceivedBytes)

	chunks, err := r.chunks.List(ctx, sess.UID)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestWriteChunkRejectsOverlap(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(300)
	sess := createSession(t, r, 300, "")

	_, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	require.NoError(t, err)

	_, err = r.receiver.WriteChunk(ctx, sess.UID, 50, bytes.NewReader(data[50:150]), 100)
	assert.ErrorIs(t, err, ErrChunkOverlap)

	_, err = r.receiver.WriteChunk(ctx, sess.UID, 250, bytes.NewReader(data[250:]), 100)
	assert.ErrorIs(t, err, ErrChunkOverlap, "range runs past declared size")
}

func TestWriteChunkSniffRejectsWrongMagic(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	sess := createSession(t, r, 300, "")

	body := bytes.Repeat([]byte{0x00}, 100)
	_, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(body), 100)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestWriteChunkSessionStates(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(300)
	sess := createSession(t, r, 300, "")

	_, err := r.receiver.WriteChunk(ctx, 99999, 0, bytes.NewReader(data[:100]), 100)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	r.sessions.setState(sess.UID, models.SessionExpired)
	_, err = r.receiver.WriteChunk(ctx, sess.UID, 100, bytes.NewReader(data[100:200]), 100)
	assert.ErrorIs(t, err, ErrSessionExpired)

	r.sessions.setState(sess.UID, models.SessionReady)
	_, err = r.receiver.WriteChunk(ctx, sess.UID, 100, bytes.NewReader(data[100:200]), 100)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestWriteChunkStorageFailureIsRetryable(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(300)
	sess := createSession(t, r, 300, "")

	r.blobs.failPuts = 1
	_, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	require.ErrorIs(t, err, ErrStorageWrite)
	var ue *Error
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.Retryable)

	// Nothing was recorded, so the retry behaves like a first attempt.
	chunks, _ := r.chunks.List(ctx, sess.UID)
	assert.Empty(t, chunks)
	_, err = r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	assert.NoError(t, err)
}

// Concurrent disjoint writers: all succeed, and exactly one of them fires
// the assembling transition.
func TestConcurrentDisjointWrites(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	const chunk = int64(4096)
	const n = 16
	data := trackBytes(n * chunk)
	sess := createSession(t, r, n*chunk, "")

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			off := int64(i) * chunk
			_, errs[i] = r.receiver.WriteChunk(ctx, sess.UID, off, bytes.NewReader(data[off:off+chunk]), chunk)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		assert.NoError(t, err, "writer %d", i)
	}

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAssembling, got.State)
	assert.Equal(t, 1, r.jobs.countKind(models.JobAssemble), "assemble enqueued exactly once")

	cov := BuildCoverage(mustList(t, r, sess.UID), sess.TotalSize)
	assert.True(t, cov.Complete())
}

func mustList(t *testing.T, r *rig, uid int64) []models.ChunkRecord {
	t.Helper()
	chunks, err := r.chunks.List(context.Background(), uid)
	require.NoError(t, err)
	return chunks
}

func TestCompleteWithGap(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(300)
	sess := createSession(t, r, 300, "")

	_, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	require.NoError(t, err)
	_, err = r.receiver.WriteChunk(ctx, sess.UID, 200, bytes.NewReader(data[200:]), 100)
	require.NoError(t, err)

	state, cov, err := r.receiver.Complete(ctx, sess.UID)
	assert.ErrorIs(t, err, ErrCoverageGap)
	assert.Equal(t, models.SessionReceiving, state)
	require.Len(t, cov.Ranges, 2, "held ranges reported for client diffing")

	// Fill the gap, then complete succeeds and is idempotent.
	_, err = r.receiver.WriteChunk(ctx, sess.UID, 100, bytes.NewReader(data[100:200]), 100)
	require.NoError(t, err)
	state, _, err = r.receiver.Complete(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAssembling, state)
	state, _, err = r.receiver.Complete(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAssembling, state)
	assert.Equal(t, 1, r.jobs.countKind(models.JobAssemble))
}
