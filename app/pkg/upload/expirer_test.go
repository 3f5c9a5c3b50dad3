package upload

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/models"
)

func newExpirer(r *rig, idle time.Duration) *Expirer {
	return &Expirer{
		Sessions:    r.sessions,
		Jobs:        r.jobs,
		Notifier:    r.notifier,
		IdleTimeout: idle,
		Logger:      zap.NewNop(),
	}
}

// A session idle past the timeout is expired, its parts are queued for
// cleanup, and later writes are refused with the expiry code.
func TestSweepExpiresIdleSession(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(300)
	sess := createSession(t, r, 300, "")
	_, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	require.NoError(t, err)

	stale := time.Now().Add(-time.Hour)
	require.NoError(t, r.sessions.Touch(ctx, sess.UID, stale))

	newExpirer(r, 30*time.Minute).Sweep(ctx)

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionExpired, got.State)
	assert.Equal(t, 1, r.jobs.countKind(models.JobChunkSweep))

	_, err = r.receiver.WriteChunk(ctx, sess.UID, 100, bytes.NewReader(data[100:200]), 100)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, _, err = r.receiver.Complete(ctx, sess.UID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSweepLeavesActiveSessionsAlone(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	data := trackBytes(300)
	sess := createSession(t, r, 300, "")
	_, err := r.receiver.WriteChunk(ctx, sess.UID, 0, bytes.NewReader(data[:100]), 100)
	require.NoError(t, err)

	newExpirer(r, 30*time.Minute).Sweep(ctx)

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionReceiving, got.State)
	assert.Equal(t, 0, r.jobs.countKind(models.JobChunkSweep))
}

func TestSweepSkipsTerminalSessions(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	sess := createSession(t, r, 300, "")
	r.sessions.setState(sess.UID, models.SessionReady)
	require.NoError(t, r.sessions.Touch(ctx, sess.UID, time.Now().Add(-time.Hour)))

	newExpirer(r, 30*time.Minute).Sweep(ctx)

	got, err := r.sessions.Get(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionReady, got.State)
}

func TestSweepNotifiesSubscribers(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	sess := createSession(t, r, 300, "")
	require.NoError(t, r.sessions.Touch(ctx, sess.UID, time.Now().Add(-time.Hour)))

	ch, cancel := r.notifier.Subscribe(sess.UID)
	defer cancel()

	newExpirer(r, 30*time.Minute).Sweep(ctx)

	select {
	case ev := <-ch:
		assert.Equal(t, models.SessionExpired, ev.State)
		assert.Equal(t, CodeSessionExpired, ev.FailCode)
	case <-time.After(time.Second):
		t.Fatal("expected an expiry event")
	}
}
