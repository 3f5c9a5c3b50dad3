package dispatch

import (
	"sync"
	"time"

	"github.com/trackvault/trackvault/app/pkg/base"
	"github.com/trackvault/trackvault/app/pkg/event"
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

type Producer struct {
	Wg *sync.WaitGroup
}

func NewProduce() *Producer {
	return &Producer{
		Wg: &sync.WaitGroup{},
	}
}

// Produce polls for due queued jobs and claims them for this node. The
// conditional claim makes the poll safe to run on every node at once.
func (p *Producer) Produce() {
	timer := time.NewTimer(1 * time.Nanosecond)
	ip, err := base.GetClientIp()
	if err != nil {
		panic(err)
	}
	defer timer.Stop()
	defer p.Wg.Done()
	for {
		select {
		case <-timer.C:
			var lgDB = new(plugins.LangGoDB).Use("default").NewDB()
			dueJobs, err := repo.NewProcessingJobRepo().FindDueQueued(lgDB, time.Now())
			if err != nil {
				bootstrap.NewLogger().Logger.Error("dispatch: poll queued jobs failed: " + err.Error())
				break
			}
			for _, j := range dueJobs {
				preProcess := event.NewEventsHandler().GetPreProcess(j.Kind)
				if preProcess != nil {
					if f := preProcess(j.ID); !f {
						continue
					}
				}
				affectRow := repo.NewProcessingJobRepo().PreemptiveJobByID(lgDB, j.ID, ip)
				if affectRow != 0 {
					if !push(Job{
						JobID:      j.ID,
						SessionUID: j.SessionUID,
						Kind:       j.Kind,
					}) {
						bootstrap.NewLogger().Logger.Info("dispatch: producer stopped")
						return
					}
				}
			}

		case <-taskCtx.Done():
			bootstrap.NewLogger().Logger.Info("dispatch: producer stopped")
			return
		}

		timer.Reset(500 * time.Millisecond)
	}
}

// push hands a claimed job to the worker pool. The queue may be full
// while workers drain during shutdown, so the send gives up once the
// dispatcher stops; the claimed but undelivered job is released by
// ResetJobsByNode in StopTask.
func push(j Job) bool {
	select {
	case JobQueue <- j:
		return true
	case <-taskCtx.Done():
		return false
	}
}

func (p *Producer) Stop() {
	p.Wg.Wait()
}
