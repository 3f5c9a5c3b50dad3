package upload

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/models"
)

// Expirer sweeps idle sessions into the expired state on a fixed schedule
// and queues their part cleanup. Terminal transitions go through the same
// conditional update as everything else, so a sweep racing a live writer
// settles on exactly one winner.
type Expirer struct {
	Sessions    SessionStore
	Jobs        JobStore
	Notifier    *Notifier
	IdleTimeout time.Duration
	Logger      *zap.Logger

	cron *cron.Cron
}

// Start schedules the sweep once a minute.
func (e *Expirer) Start() {
	e.cron = cron.New()
	_, _ = e.cron.AddFunc("@every 1m", func() { e.Sweep(context.Background()) })
	e.cron.Start()
}

// Stop waits for a running sweep to finish.
func (e *Expirer) Stop() {
	if e.cron != nil {
		<-e.cron.Stop().Done()
	}
}

// Sweep expires every non-terminal session idle past the cutoff. Exported
// so operational tooling can trigger it off-schedule.
func (e *Expirer) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-e.IdleTimeout)
	idle, err := e.Sessions.ListIdle(ctx, cutoff)
	if err != nil {
		e.Logger.Error("expiry sweep: list idle sessions failed", zap.Error(err))
		return
	}
	for i := range idle {
		sess := &idle[i]
		if models.TerminalSessionState(sess.State) {
			continue
		}
		swapped, err := e.Sessions.CASState(ctx, sess.UID, sess.State, models.SessionExpired)
		if err != nil {
			e.Logger.Error("expiry sweep: expire failed", zap.Int64("sessionUid", sess.UID), zap.Error(err))
			continue
		}
		if !swapped {
			continue // a writer or another transition won
		}
		extra, _ := json.Marshal(models.SweepMsg{SessionUID: sess.UID})
		job := &models.ProcessingJob{
			SessionUID: sess.UID,
			Kind:       models.JobChunkSweep,
			Status:     models.JobStatusQueued,
			ExtraData:  string(extra),
		}
		if err := e.Jobs.Enqueue(ctx, job); err != nil {
			e.Logger.Error("expiry sweep: enqueue sweep failed", zap.Int64("sessionUid", sess.UID), zap.Error(err))
		}
		e.Notifier.Publish(Event{SessionUID: sess.UID, State: models.SessionExpired,
			FailCode: CodeSessionExpired, TotalSize: sess.TotalSize, At: time.Now()})
		e.Logger.Info("session expired for inactivity",
			zap.Int64("sessionUid", sess.UID), zap.Timep("lastActivity", sess.LastActivity))
	}
}
