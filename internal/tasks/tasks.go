// Package tasks runs detached background work with bounded concurrency
package tasks

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/hellausefulsoftware/codescribe/internal/logging"
)

// DefaultLimit bounds concurrently running tasks when no limit is given
const DefaultLimit = 16

// ErrClosed is returned by Submit once Drain has been called
var ErrClosed = errors.New("task set is draining")

// Func is a unit of detached work
type Func func(ctx context.Context) error

type task struct {
	name    string
	started time.Time
}

// Set runs submitted functions in their own goroutines. At most limit of
// them execute at once; the rest wait for a slot without blocking Submit.
type Set struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	running map[string]task
}

// New creates a task set allowing limit concurrent tasks
func New(limit int) *Set {
	if limit < 1 {
		limit = DefaultLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Set{
		sem:     semaphore.NewWeighted(int64(limit)),
		ctx:     ctx,
		cancel:  cancel,
		running: make(map[string]task),
	}
}

// Submit schedules fn and returns its task id immediately
func (s *Set) Submit(name string, fn Func) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	id := uuid.NewString()
	s.running[id] = task{name: name, started: time.Now()}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(id, name, fn)
	return id, nil
}

func (s *Set) run(id, name string, fn Func) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.running, id)
		s.mu.Unlock()
	}()

	log := logging.WithFields(map[string]any{"task_id": id, "task": name})

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		log.Warn("task dropped before start", "error", err)
		return
	}
	defer s.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	if err := fn(s.ctx); err != nil {
		log.Error("task failed", "error", err, "elapsed", time.Since(start))
		return
	}
	log.Debug("task finished", "elapsed", time.Since(start))
}

// InFlight returns the number of submitted tasks that have not finished
func (s *Set) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// Drain stops accepting tasks and waits for the submitted ones to finish.
// When ctx ends first the remaining tasks are cancelled and ctx's error is
// returned after they exit.
func (s *Set) Drain(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	pending := len(s.running)
	s.mu.Unlock()

	if pending > 0 {
		logging.Info("waiting for background tasks", "pending", pending)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		logging.Warn("cancelling unfinished tasks", "remaining", len(s.running))
		for id, t := range s.running {
			logging.Warn("unfinished task", "task_id", id, "name", t.name, "age", time.Since(t.started).Round(time.Millisecond))
		}
		s.mu.Unlock()
		s.cancel()
		<-done
		return ctx.Err()
	}
}
