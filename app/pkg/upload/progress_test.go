package upload

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackvault/trackvault/app/models"
)

func TestNotifierDeliversToSubscribers(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe(7)
	defer cancel()

	n.Publish(Event{SessionUID: 7, State: models.SessionReceiving, ReceivedBytes: 10, TotalSize: 100})
	n.Publish(Event{SessionUID: 8, State: models.SessionReady}) // other session, not delivered

	select {
	case ev := <-ch:
		assert.Equal(t, int64(7), ev.SessionUID)
		assert.Equal(t, models.SessionReceiving, ev.State)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event for session %d", ev.SessionUID)
	default:
	}
}

// A slow subscriber never stalls the writer: publishes beyond the buffer
// are dropped, not blocked on.
func TestNotifierNeverBlocksPublisher(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*10; i++ {
			n.Publish(Event{SessionUID: 1, ReceivedBytes: int64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestNotifierUnknownSessionTolerated(t *testing.T) {
	n := NewNotifier()
	// No subscription exists for this session at all.
	n.Publish(Event{SessionUID: 404, State: models.SessionReceiving})

	ch, cancel := n.Subscribe(404)
	cancel()
	// Publishing after cancel goes nowhere and must not panic.
	n.Publish(Event{SessionUID: 404, State: models.SessionReady})
	select {
	case <-ch:
		t.Fatal("cancelled subscriber received an event")
	default:
	}
}

// Snapshots come from persisted state only, so they survive restarts and
// racing notifications.
func TestSnapshotDerivedFromStores(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(1000)
	sess := createSession(t, r, 1000, "")
	_, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:400]), 400)
	require.NoError(t, err)

	sr := &StatusReader{Sessions: r.sessions, Chunks: r.chunks, Jobs: r.jobs}
	p, err := sr.Snapshot(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionReceiving, p.State)
	assert.Equal(t, int64(400), p.ReceivedBytes)
	assert.Equal(t, int64(1000), p.TotalSize)
	assert.InDelta(t, 40.0, p.Percent, 0.001)
	require.Len(t, p.Ranges, 1)
	assert.Empty(t, p.Jobs)

	_, err = sr.Snapshot(ctx, 99999)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSnapshotIncludesJobOutcomes(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(1000)
	sess := createSession(t, r, 1000, "")
	uploadAll(t, r, sess.UID, data, 400)
	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))
	r.jobs.setStatus(models.JobMetadataExtract, models.JobStatusSucceeded)
	r.jobs.setStatus(models.JobWaveform, models.JobStatusFailed)

	sr := &StatusReader{Sessions: r.sessions, Chunks: r.chunks, Jobs: r.jobs}
	p, err := sr.Snapshot(ctx, sess.UID)
	require.NoError(t, err)

	byKind := map[string]string{}
	for _, j := range p.Jobs {
		byKind[j.Kind] = j.Status
	}
	assert.Equal(t, "succeeded", byKind[models.JobMetadataExtract])
	assert.Equal(t, "failed", byKind[models.JobWaveform])
	assert.Equal(t, "queued", byKind[models.JobPreview])
	assert.NotContains(t, byKind, models.JobChunkSweep, "infrastructure jobs stay internal")
}
