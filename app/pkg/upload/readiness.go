package upload

import (
	"context"
	"time"

	"github.com/trackvault/trackvault/app/models"
)

// Readiness drives the processing->ready and processing->failed
// transitions. It is evaluated after every audio job reaches a terminal
// status, so the session settles as soon as the last outcome is known.
type Readiness struct {
	Sessions SessionStore
	Jobs     JobStore
	Notifier *Notifier
}

// Evaluate applies the readiness policy: a required job failing
// permanently fails the session; once every audio job is terminal and the
// required ones succeeded, the session is ready. Best-effort job failures
// never block readiness.
func (r *Readiness) Evaluate(ctx context.Context, sessionUID int64) error {
	sess, err := r.Sessions.Get(ctx, sessionUID)
	if err != nil {
		return err
	}
	if sess.State != models.SessionProcessing {
		return nil
	}

	jobs, err := r.Jobs.ListBySession(ctx, sessionUID)
	if err != nil {
		return err
	}
	audio := 0
	terminal := 0
	requiredOK := true
	for _, j := range jobs {
		if !isAudioJob(j.Kind) {
			continue
		}
		audio++
		switch j.Status {
		case models.JobStatusFailed:
			terminal++
			if models.RequiredJob(j.Kind) {
				swapped, err := r.Sessions.MarkFailed(ctx, sessionUID, models.SessionProcessing, CodeProcessingJobFailed)
				if err != nil {
					return err
				}
				if swapped {
					r.Notifier.Publish(Event{SessionUID: sessionUID, State: models.SessionFailed,
						FailCode: CodeProcessingJobFailed, ReceivedBytes: sess.TotalSize, TotalSize: sess.TotalSize, At: time.Now()})
				}
				return nil
			}
		case models.JobStatusSucceeded:
			terminal++
		default:
			if models.RequiredJob(j.Kind) {
				requiredOK = false
			}
		}
	}
	if audio == 0 || terminal < audio || !requiredOK {
		return nil
	}

	swapped, err := r.Sessions.CASState(ctx, sessionUID, models.SessionProcessing, models.SessionReady)
	if err != nil {
		return err
	}
	if swapped {
		r.Notifier.Publish(Event{SessionUID: sessionUID, State: models.SessionReady,
			ReceivedBytes: sess.TotalSize, TotalSize: sess.TotalSize, At: time.Now()})
	}
	return nil
}

func isAudioJob(kind string) bool {
	for _, k := range models.AudioJobKinds {
		if k == kind {
			return true
		}
	}
	return false
}
