package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	fired []uuid.UUID
	done  chan uuid.UUID
}

func newRecorder() *recorder {
	return &recorder{done: make(chan uuid.UUID, 16)}
}

func (r *recorder) task(ctx context.Context, id uuid.UUID) {
	r.mu.Lock()
	r.fired = append(r.fired, id)
	r.mu.Unlock()
	r.done <- id
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func (r *recorder) wait(t *testing.T) uuid.UUID {
	t.Helper()
	select {
	case id := <-r.done:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task to fire")
		return uuid.Nil
	}
}

func TestSchedule_FiresAtDeadline(t *testing.T) {
	rec := newRecorder()
	s := New(rec.task)
	defer s.Stop()

	id := uuid.New()
	s.Schedule(id, time.Now().Add(20*time.Millisecond))
	assert.Equal(t, 1, s.Pending())

	assert.Equal(t, id, rec.wait(t))
	assert.Equal(t, 0, s.Pending())
}

func TestSchedule_PastTimeFiresImmediately(t *testing.T) {
	rec := newRecorder()
	s := New(rec.task)
	defer s.Stop()

	id := uuid.New()
	s.Schedule(id, time.Now().Add(-time.Minute))
	assert.Equal(t, id, rec.wait(t))
}

func TestSchedule_ReplacesExistingTimer(t *testing.T) {
	rec := newRecorder()
	s := New(rec.task)
	defer s.Stop()

	id := uuid.New()
	s.Schedule(id, time.Now().Add(time.Hour))
	s.Schedule(id, time.Now().Add(10*time.Millisecond))
	assert.Equal(t, 1, s.Pending())

	rec.wait(t)
	assert.Equal(t, 1, rec.count(), "rescheduling must not double-fire")
}

func TestCancel_StopsPendingTimer(t *testing.T) {
	rec := newRecorder()
	s := New(rec.task)
	defer s.Stop()

	id := uuid.New()
	s.Schedule(id, time.Now().Add(30*time.Millisecond))
	s.Cancel(id)
	assert.Equal(t, 0, s.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestCancel_UnknownIDIsNoop(t *testing.T) {
	s := New(newRecorder().task)
	defer s.Stop()

	s.Cancel(uuid.New())
	assert.Equal(t, 0, s.Pending())
}

func TestStop_PreventsFurtherRuns(t *testing.T) {
	rec := newRecorder()
	s := New(rec.task)

	for i := 0; i < 5; i++ {
		s.Schedule(uuid.New(), time.Now().Add(30*time.Millisecond))
	}
	s.Stop()
	assert.Equal(t, 0, s.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}
