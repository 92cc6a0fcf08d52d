package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// IJob scheduled job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

// OnWork one round of a job
type OnWork func(ctx context.Context) error

// BaseJob cron driven job, a round is skipped while the previous one still runs
type BaseJob struct {
	Name   string
	Cron   *cron.Cron
	OnWork OnWork

	running int32
}

// Schedule sets up the cron of the job in the configured location
func (job *BaseJob) Schedule(location, spec string) error {
	l, err := time.LoadLocation(location)
	if err != nil {
		l = time.UTC
	}

	job.Cron = cron.New(cron.WithLocation(l))
	_, err = job.Cron.AddFunc(spec, job.Run)
	return err
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

// Stop stops the schedule and waits for a running round
func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	log := logger.FromContext(context.Background()).WithField("worker", job.Name)
	ctx := logger.WithContext(context.Background(), log)

	if err := job.OnWork(ctx); err != nil {
		log.WithError(err).Errorln("round failed")
	}
}
