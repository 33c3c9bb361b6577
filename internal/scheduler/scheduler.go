package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/worker"
)

// Scheduler enqueues jobs onto a worker pool at fixed intervals.
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	wg         sync.WaitGroup
}

// New creates a scheduler backed by the given pool.
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval. A zero or negative
// interval disables the job. The first run happens one interval after
// Schedule, not immediately, so startup traffic stays predictable.
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	if interval <= 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !s.workerPool.Enqueue(job) {
					logger.FromContext(context.Background()).Warn(worker.LogMsgSyncJobSkipped, "job", job.Name())
				}
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs.
func (s *Scheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}
