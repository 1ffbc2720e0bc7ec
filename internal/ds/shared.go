package ds

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"robot-controller/internal/types"
)

// SharedState holds the latest operator snapshot. The updater is its only
// writer and the scheduler its only waiter; any goroutine may Read.
//
// All fields are guarded by mu. Publish replaces the snapshot wholesale, so a
// reader never sees fields from two different captures.
type SharedState struct {
	clk clock.Clock

	mu       sync.Mutex
	cond     *sync.Cond
	snapshot types.OperatorSnapshot
	pending  bool
	seq      uint64
	dropped  uint64 // Snapshots overwritten before a waiter consumed them
}

// NewSharedState creates the shared snapshot. A nil clk uses the wall clock.
func NewSharedState(clk clock.Clock) *SharedState {
	if clk == nil {
		clk = clock.New()
	}
	s := &SharedState{clk: clk}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Publish stores snap as the current snapshot, stamps its Sequence and wakes
// every waiter.
func (s *SharedState) Publish(snap types.OperatorSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		s.dropped++
	}
	s.seq++
	snap.Sequence = s.seq
	s.snapshot = snap
	s.pending = true

	s.cond.Broadcast()
}

// Read returns a copy of the current snapshot without blocking on new data.
func (s *SharedState) Read() types.OperatorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// WaitForData blocks until a snapshot is published that this waiter has not
// consumed yet. It returns immediately if one is already pending.
func (s *SharedState) WaitForData() {
	_ = s.WaitForDataContext(context.Background())
}

// WaitForDataContext is WaitForData that gives up when ctx is done.
func (s *SharedState) WaitForDataContext(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.wake)
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
	s.pending = false
	return nil
}

// WaitForDataTimeout waits at most timeout and reports whether new data
// arrived.
func (s *SharedState) WaitForDataTimeout(timeout time.Duration) bool {
	deadline := s.clk.Now().Add(timeout)
	timer := s.clk.AfterFunc(timeout, s.wake)
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.pending {
		if !s.clk.Now().Before(deadline) {
			return false
		}
		s.cond.Wait()
	}
	s.pending = false
	return true
}

// Dropped returns how many snapshots were replaced before being consumed.
func (s *SharedState) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Sequence returns the Sequence of the latest published snapshot.
func (s *SharedState) Sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// wake nudges waiters so they re-check their exit conditions.
func (s *SharedState) wake() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}
