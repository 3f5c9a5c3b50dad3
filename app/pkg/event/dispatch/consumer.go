package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/event"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

// Job one claimed unit handed from the producer to a worker.
type Job struct {
	JobID      int64
	SessionUID int64
	Kind       string
}

type Worker struct {
	Wg *sync.WaitGroup
}

func NewWorker() *Worker {
	return &Worker{
		Wg: &sync.WaitGroup{},
	}
}

func (w *Worker) Start() {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case job := <-JobQueue:
				w.run(job)
			case <-taskCtx.Done():
				return
			}
		}
	}()
}

func (w *Worker) run(job Job) {
	lgDB := new(plugins.LangGoDB).Use("default").NewDB()
	lgLogger := bootstrap.NewLogger().Logger
	conf := bootstrap.NewConfig("").Upload

	logData := models.JobLog{
		JobID:  job.JobID,
		Status: models.JobStatusRunning,
	}
	_ = repo.JobLogRepo.Create(lgDB, &logData)
	_ = repo.NewProcessingJobRepo().UpdateColumn(lgDB, job.JobID, "job_log_id", logData.ID)

	handler := event.NewEventsHandler().GetHandler(job.Kind)
	if handler == nil {
		msg := fmt.Sprintf("no handler registered for kind %s", job.Kind)
		if repo.NewProcessingJobRepo().ErrorJobByID(lgDB, job.JobID, msg) == 1 {
			_ = repo.JobLogRepo.UpdateColumn(lgDB, logData.ID, map[string]interface{}{
				"status":     models.JobStatusFailed,
				"error_info": msg,
			})
		}
		w.settle(job)
		return
	}

	err := runWithTimeout(handler, job.JobID, time.Duration(conf.JobTimeoutSec)*time.Second)
	jobInfo, _ := repo.NewProcessingJobRepo().GetByID(lgDB, job.JobID)
	if err == nil {
		if repo.NewProcessingJobRepo().FinishJobByID(lgDB, job.JobID) == 1 {
			_ = repo.JobLogRepo.UpdateColumn(lgDB, logData.ID, map[string]interface{}{
				"status":     models.JobStatusSucceeded,
				"error_info": "",
			})
		}
		w.settle(job)
		return
	}

	if jobInfo.ExecuteTime < conf.JobAttempts {
		// Put it back behind an exponential backoff window.
		next := time.Now().Add(backoff(jobInfo.ExecuteTime))
		if repo.NewProcessingJobRepo().RequeueJobByID(lgDB, job.JobID, next, err.Error()) == 1 {
			_ = repo.JobLogRepo.UpdateColumn(lgDB, logData.ID, map[string]interface{}{
				"status":     models.JobStatusFailed,
				"error_info": err.Error(),
			})
		}
		lgLogger.Warn("job attempt failed, requeued",
			zap.Int64("jobId", job.JobID), zap.String("kind", job.Kind),
			zap.Int("attempt", jobInfo.ExecuteTime), zap.Error(err))
		return
	}

	if repo.NewProcessingJobRepo().ErrorJobByID(lgDB, job.JobID, err.Error()) == 1 {
		_ = repo.JobLogRepo.UpdateColumn(lgDB, logData.ID, map[string]interface{}{
			"status":     models.JobStatusFailed,
			"error_info": err.Error(),
		})
	}
	lgLogger.Error("job failed permanently",
		zap.Int64("jobId", job.JobID), zap.String("kind", job.Kind), zap.Error(err))
	w.settle(job)
}

// settle re-evaluates the session after a job reached a terminal status.
func (w *Worker) settle(job Job) {
	if readiness == nil {
		return
	}
	for _, kind := range models.AudioJobKinds {
		if job.Kind == kind {
			if err := readiness.Evaluate(context.Background(), job.SessionUID); err != nil {
				bootstrap.NewLogger().Logger.Error("readiness evaluation failed",
					zap.Int64("sessionUid", job.SessionUID), zap.Error(err))
			}
			return
		}
	}
}

// runWithTimeout bounds one attempt. The handler keeps running in its
// goroutine past the deadline, but its attempt is already charged.
func runWithTimeout(handler func(ctx context.Context, jobID int64) error, jobID int64, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(taskCtx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- handler(ctx, jobID)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("job attempt timed out after %s", timeout)
	}
}

// backoff doubles per attempt: 2s, 4s, 8s, ...
func backoff(attempt int) time.Duration {
	d := 2 * time.Second
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

func (w *Worker) Stop() {
	w.Wg.Wait()
}
