package dispatch

import (
	"context"

	"github.com/trackvault/trackvault/app/pkg/base"
	_ "github.com/trackvault/trackvault/app/pkg/event/handlers" // runs the handlers' init registration
	"github.com/trackvault/trackvault/app/pkg/repo"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/app/pkg/utils"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

var (
	taskCtx, taskCancel = context.WithCancel(context.Background())
	JobQueue            = make(chan Job, utils.MaxQueue)

	readiness *upload.Readiness
)

// Setup wires the readiness evaluator the workers consult after each
// terminal audio job. Must run before RunTask.
func Setup(r *upload.Readiness) {
	readiness = r
}

// RunTask starts the producer and the worker pool.
func RunTask() (*Producer, []Worker) {
	p := NewProduce()
	p.Wg.Add(1)
	go p.Produce()

	workerNum := bootstrap.NewConfig("").Upload.WorkerNum
	var consumers []Worker
	for i := 0; i < workerNum; i++ {
		worker := NewWorker()
		consumers = append(consumers, *worker)
		worker.Wg.Add(1)
		worker.Start()
	}
	return p, consumers
}

// StopTask drains the loop and releases jobs this node still held so
// another node can claim them.
func StopTask(p *Producer, consumers []Worker) {
	ip, err := base.GetClientIp()
	if err != nil {
		panic(err)
	}

	taskCancel()

	p.Stop()
	for i := range consumers {
		consumers[i].Stop()
	}

	var lgDB = new(plugins.LangGoDB).Use("default").NewDB()
	repo.NewProcessingJobRepo().ResetJobsByNode(lgDB, ip)
}
