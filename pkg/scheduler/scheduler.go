package scheduler

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"workstream/pkg/logger"
)

var pendingJobs = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "workstream_scheduler_pending_jobs",
	Help: "Deferred jobs waiting to fire.",
})

// Scheduler runs single-shot deferred jobs. Jobs are best-effort: they are
// not persisted across restarts and cannot be cancelled individually, only
// stopped wholesale at shutdown.
type Scheduler struct {
	mu     sync.Mutex
	seq    uint64
	timers map[uint64]*time.Timer
	wg     sync.WaitGroup
	closed bool
}

// New returns a ready Scheduler.
func New() *Scheduler {
	return &Scheduler{timers: map[uint64]*time.Timer{}}
}

// After schedules fn to run once after d (clamped to zero) and returns the
// job id. Fires run on their own goroutine and must do their own locking.
func (s *Scheduler) After(d time.Duration, fn func()) uint64 {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	s.seq++
	id := s.seq
	s.wg.Add(1)
	s.timers[id] = time.AfterFunc(d, func() {
		defer s.wg.Done()
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		pendingJobs.Set(float64(len(s.timers)))
		s.mu.Unlock()
		fn()
	})
	pendingJobs.Set(float64(len(s.timers)))
	logger.Log.Debug("job_scheduled", zap.Uint64("id", id), zap.Duration("delay", d))
	return id
}

// Pending returns the number of jobs that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop halts all pending timers and waits for in-flight fires to finish.
// Jobs that had not fired are dropped (accepted loss; see sendlater
// semantics).
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, t := range s.timers {
		if t.Stop() {
			// timer will never fire; release its wg slot
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	pendingJobs.Set(0)
	s.mu.Unlock()
	s.wg.Wait()
	logger.Log.Info("scheduler_stopped")
}
