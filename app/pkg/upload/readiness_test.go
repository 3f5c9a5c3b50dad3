package upload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackvault/trackvault/app/models"
)

func processingSession(t *testing.T, r *rig) int64 {
	t.Helper()
	ctx := context.Background()
	data := trackBytes(1000)
	sess := createSession(t, r, 1000, "")
	uploadAll(t, r, sess.UID, data, 400)
	require.NoError(t, r.assembler.Assemble(ctx, sess.UID))
	return sess.UID
}

func evaluate(t *testing.T, r *rig, uid int64) string {
	t.Helper()
	ctx := context.Background()
	rd := &Readiness{Sessions: r.sessions, Jobs: r.jobs, Notifier: r.notifier}
	require.NoError(t, rd.Evaluate(ctx, uid))
	sess, err := r.sessions.Get(ctx, uid)
	require.NoError(t, err)
	return sess.State
}

func TestReadinessAllSucceeded(t *testing.T) {
	r := newRig()
	uid := processingSession(t, r)

	r.jobs.setStatus(models.JobMetadataExtract, models.JobStatusSucceeded)
	assert.Equal(t, models.SessionProcessing, evaluate(t, r, uid), "waveform and preview still pending")

	r.jobs.setStatus(models.JobWaveform, models.JobStatusSucceeded)
	r.jobs.setStatus(models.JobPreview, models.JobStatusSucceeded)
	assert.Equal(t, models.SessionReady, evaluate(t, r, uid))
}

// Best-effort failures never block readiness as long as the required
// extraction succeeded.
func TestReadinessBestEffortFailuresTolerated(t *testing.T) {
	r := newRig()
	uid := processingSession(t, r)

	r.jobs.setStatus(models.JobMetadataExtract, models.JobStatusSucceeded)
	r.jobs.setStatus(models.JobWaveform, models.JobStatusFailed)
	r.jobs.setStatus(models.JobPreview, models.JobStatusFailed)
	assert.Equal(t, models.SessionReady, evaluate(t, r, uid))
}

func TestReadinessRequiredFailureFailsSession(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	uid := processingSession(t, r)

	r.jobs.setStatus(models.JobMetadataExtract, models.JobStatusFailed)
	assert.Equal(t, models.SessionFailed, evaluate(t, r, uid))

	sess, err := r.sessions.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, CodeProcessingJobFailed, sess.FailCode)

	// Later evaluations of the settled session are no-ops.
	r.jobs.setStatus(models.JobWaveform, models.JobStatusSucceeded)
	assert.Equal(t, models.SessionFailed, evaluate(t, r, uid))
}

func TestReadinessIgnoresNonProcessingSessions(t *testing.T) {
	r := newRig()
	sess := createSession(t, r, 1000, "")
	assert.Equal(t, models.SessionCreated, evaluate(t, r, sess.UID))
}
