package remote

import (
	"context"
	"sync"
)

// StopFunc asks the service to stop a result; force selects TERMINATE.
type StopFunc func(ctx context.Context, resultID string, force bool) error

// Stopper turns repeated interrupts into stop requests. The first
// successful request is graceful, every later one forced. A failed request
// leaves the count unchanged. While a request is in flight further
// interrupts are dropped.
type Stopper struct {
	stop     StopFunc
	resultID string

	mu      sync.Mutex
	count   int
	pending bool
}

func NewStopper(resultID string, stop StopFunc) *Stopper {
	return &Stopper{stop: stop, resultID: resultID}
}

// Interrupt issues at most one stop request. It reports false when the
// interrupt was dropped.
func (s *Stopper) Interrupt(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return false, nil
	}
	s.pending = true
	force := s.count > 0
	s.mu.Unlock()

	err := s.stop(ctx, s.resultID, force)

	s.mu.Lock()
	s.pending = false
	if err == nil {
		s.count++
	}
	s.mu.Unlock()
	return true, err
}

// Count is the number of stop requests that succeeded.
func (s *Stopper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
