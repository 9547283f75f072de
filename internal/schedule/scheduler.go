package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func SystemClock() Clock {
	return systemClock{}
}

type entry struct {
	task     Task
	interval time.Duration
}

// Scheduler owns named periodic tasks. Each task is rescheduled only
// after its previous run completes, so a slow run delays the next one
// instead of overlapping it.
type Scheduler struct {
	clock   Clock
	entries []entry
	wg      sync.WaitGroup
}

func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
	}
}

func (s *Scheduler) Add(task Task, interval time.Duration) {
	s.entries = append(s.entries, entry{
		task:     task,
		interval: interval,
	})
}

// Start launches one goroutine per task. Each task runs once
// immediately, then repeats until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, e := range s.entries {
		s.wg.Add(1)
		go func(e entry) {
			defer s.wg.Done()
			for {
				if err := e.task.Run(ctx); err != nil {
					slog.Error("scheduled task failed", "task", e.task.Name(), "error", err)
				}
				select {
				case <-ctx.Done():
					return
				case <-s.clock.After(e.interval):
				}
			}
		}(e)
	}
}

// Wait blocks until all task goroutines have stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
