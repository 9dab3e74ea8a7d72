package glass

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector observes every batch a Store submits to its Engine.
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	ObserveBatch(op, typ string, cmds int, elapsed time.Duration, err error)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveBatch(string, string, int, time.Duration, error) {}

// BasicMetrics keeps in-process totals.
type BasicMetrics struct {
	Batches  atomic.Int64
	Commands atomic.Int64
	Failures atomic.Int64
	Elapsed  atomic.Int64 // nanoseconds

	mu   sync.Mutex
	byOp map[string]int64
}

func (m *BasicMetrics) ObserveBatch(op, typ string, cmds int, elapsed time.Duration, err error) {
	m.Batches.Add(1)
	m.Commands.Add(int64(cmds))
	m.Elapsed.Add(int64(elapsed))
	if err != nil {
		m.Failures.Add(1)
	}
	m.mu.Lock()
	if m.byOp == nil {
		m.byOp = make(map[string]int64)
	}
	m.byOp[op]++
	m.mu.Unlock()
}

type MetricsSnapshot struct {
	Batches  int64
	Commands int64
	Failures int64
	Elapsed  time.Duration
	ByOp     map[string]int64
}

func (m *BasicMetrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Batches:  m.Batches.Load(),
		Commands: m.Commands.Load(),
		Failures: m.Failures.Load(),
		Elapsed:  time.Duration(m.Elapsed.Load()),
		ByOp:     make(map[string]int64),
	}
	m.mu.Lock()
	for k, v := range m.byOp {
		snap.ByOp[k] = v
	}
	m.mu.Unlock()
	return snap
}
