package dispatch

import (
	"context"
	"sync"

	"github.com/hoslink/hoslink/internal/platform/metrics"
)

// task is one running mission simulation. complete guards the end-of-route
// completion so it runs at most once per mission, even when a manual
// completion races the simulator.
type task struct {
	patientID string
	cancel    context.CancelFunc
	complete  sync.Once
}

// supervisor keeps at most one cancellable task per ambulance and joins
// them all on shutdown, so the server never leaks simulator goroutines.
type supervisor struct {
	mu     sync.Mutex
	tasks  map[string]*task
	wg     sync.WaitGroup
	closed bool
}

func newSupervisor() *supervisor {
	return &supervisor{tasks: make(map[string]*task)}
}

// Start launches fn as the ambulance's mission task, cancelling any task
// still registered for the vehicle first. After Shutdown, Start is a no-op.
func (s *supervisor) Start(ambulanceID, patientID string, fn func(ctx context.Context, t *task)) {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{patientID: patientID, cancel: cancel}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	if prev, ok := s.tasks[ambulanceID]; ok {
		prev.cancel()
	}
	s.tasks[ambulanceID] = t
	s.wg.Add(1)
	s.mu.Unlock()

	metrics.ActiveMissions.Inc()
	go func() {
		defer s.wg.Done()
		defer metrics.ActiveMissions.Dec()
		defer s.remove(ambulanceID, t)
		fn(ctx, t)
	}()
}

// Stop cancels and unregisters the ambulance's task. It returns the task
// so the caller can claim its completion guard, or nil when no mission
// was running.
func (s *supervisor) Stop(ambulanceID string) *task {
	s.mu.Lock()
	t, ok := s.tasks[ambulanceID]
	if ok {
		delete(s.tasks, ambulanceID)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	t.cancel()
	return t
}

func (s *supervisor) remove(ambulanceID string, t *task) {
	s.mu.Lock()
	if cur, ok := s.tasks[ambulanceID]; ok && cur == t {
		delete(s.tasks, ambulanceID)
	}
	s.mu.Unlock()
}

// Shutdown cancels every running task and waits for all of them to stop.
func (s *supervisor) Shutdown() {
	s.mu.Lock()
	s.closed = true
	for _, t := range s.tasks {
		t.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
