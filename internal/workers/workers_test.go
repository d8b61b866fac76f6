package workers

import (
	"testing"
	"time"

	"github.com/palmora/reading-gate/internal/logger"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount int
}

func (m *mockWorker) Run() {
	m.runCount++
}

// mockSweeper records the instants it was asked to sweep at.
type mockSweeper struct {
	calls   int
	removed int
}

func (m *mockSweeper) Sweep(now time.Time) int {
	m.calls++
	return m.removed
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := &Workers{workers: []Worker{w1, w2, w3}}
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := &Workers{workers: []Worker{}}

	// Should not panic on empty workers list
	ws.Run()
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run()
}

func TestJanitor_SweepsAllSweepers(t *testing.T) {
	s1 := &mockSweeper{removed: 2}
	s2 := &mockSweeper{removed: 0}

	j := newJanitor(time.Minute, []Sweeper{s1, s2}, logger.Nop())
	j.sweep(time.Now())

	if s1.calls != 1 || s2.calls != 1 {
		t.Errorf("expected every sweeper called once, got %d and %d", s1.calls, s2.calls)
	}
}

func TestJanitor_DefaultInterval(t *testing.T) {
	j := newJanitor(0, nil, logger.Nop())
	if j.interval != defaultSweepInterval {
		t.Errorf("expected default interval %v, got %v", defaultSweepInterval, j.interval)
	}
}

func TestJanitor_RunAndStop(t *testing.T) {
	s := &mockSweeper{}

	j := newJanitor(5*time.Millisecond, []Sweeper{s}, logger.Nop())
	j.Run()

	time.Sleep(30 * time.Millisecond)
	close(j.stop)

	if s.calls == 0 {
		t.Error("expected at least one sweep after the interval elapsed")
	}
}
