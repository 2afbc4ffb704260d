// Package scheduler fires a task once per key at a given time.
// Timers live in process memory only; a periodic sweep elsewhere
// catches anything lost across restarts.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Task func(ctx context.Context, id uuid.UUID)

type Scheduler struct {
	task   Task
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
	ctx    context.Context
	cancel context.CancelFunc
}

func New(task Task) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		task:   task,
		timers: make(map[uuid.UUID]*time.Timer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule arms a one-shot timer for id at the given time. A past
// time fires immediately. Re-scheduling an id replaces its timer.
func (s *Scheduler) Schedule(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		select {
		case <-s.ctx.Done():
			return
		default:
		}
		s.task(s.ctx, id)
	})
}

// Cancel drops the pending timer for id, if any.
func (s *Scheduler) Cancel(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports how many timers are armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all timers and prevents further task runs.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
