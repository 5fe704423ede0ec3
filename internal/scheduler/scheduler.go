// Package scheduler runs periodic maintenance jobs in the background.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// JobFunc is one run of a job. Its context is cancelled when the job is
// removed or the scheduler stops.
type JobFunc func(ctx context.Context) error

type Scheduler struct {
	jobs   map[string]*job // job name -> job
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type job struct {
	name     string
	interval time.Duration
	run      JobFunc
	ticker   *time.Ticker
	cancel   context.CancelFunc
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Stop cancels every job and waits for running ones to return.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cancel()

	s.mu.Lock()
	for _, j := range s.jobs {
		j.ticker.Stop()
		j.cancel()
	}
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("Scheduler stopped")
}

// Add runs fn once immediately and then every interval. A job with the same
// name is replaced.
func (s *Scheduler) Add(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	if existing, exists := s.jobs[name]; exists {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)

	j := &job{
		name:     name,
		interval: interval,
		run:      fn,
		ticker:   time.NewTicker(interval),
		cancel:   jobCancel,
	}

	s.jobs[name] = j

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(jobCtx, j)
		s.loop(jobCtx, j)
	}()

	log.Printf("Added job %s every %v", name, interval)
}

// Remove stops the named job.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, exists := s.jobs[name]; exists {
		j.ticker.Stop()
		j.cancel()
		delete(s.jobs, name)
		log.Printf("Removed job %s", name)
	}
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer j.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	if ctx.Err() != nil {
		return
	}

	if err := j.run(ctx); err != nil {
		log.Printf("Job %s failed: %v", j.name, err)
	}
}

// Status reports the number of scheduled jobs and whether the scheduler is
// still running.
func (s *Scheduler) Status() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"jobs":    len(s.jobs),
		"running": s.ctx.Err() == nil,
	}
}
