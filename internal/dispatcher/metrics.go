package dispatcher

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Metrics collects invocation statistics.
type Metrics struct {
	mu sync.RWMutex

	commands map[string]*CommandMetrics

	totalInvocations uint64
	totalErrors      uint64
	totalNoOps       uint64
	totalPanics      uint64
	totalDuration    time.Duration
}

// CommandMetrics holds metrics for one action name.
type CommandMetrics struct {
	Name            string
	InvocationCount uint64
	ErrorCount      uint64
	NoOpCount       uint64
	TotalDuration   time.Duration
	MinDuration     time.Duration
	MaxDuration     time.Duration
	LastStatus      Status
	LastInvocation  time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		commands: make(map[string]*CommandMetrics),
	}
}

// RecordInvocation records one completed invocation of name.
func (m *Metrics) RecordInvocation(name string, duration time.Duration, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalInvocations++
	m.totalDuration += duration

	cm := m.commands[name]
	if cm == nil {
		cm = &CommandMetrics{
			Name:        name,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.commands[name] = cm
	}

	cm.InvocationCount++
	cm.TotalDuration += duration
	cm.LastStatus = status
	cm.LastInvocation = time.Now()
	cm.MinDuration = min(cm.MinDuration, duration)
	cm.MaxDuration = max(cm.MaxDuration, duration)

	switch status {
	case StatusError:
		m.totalErrors++
		cm.ErrorCount++
	case StatusNoOp:
		m.totalNoOps++
		cm.NoOpCount++
	}
}

// RecordPanic records a recovered panic.
func (m *Metrics) RecordPanic(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPanics++
}

// TotalInvocations returns the total number of invocations.
func (m *Metrics) TotalInvocations() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalInvocations
}

// TotalErrors returns the total number of failed invocations.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalErrors
}

// TotalNoOps returns the number of invocations that changed nothing.
func (m *Metrics) TotalNoOps() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalNoOps
}

// TotalPanics returns the number of recovered panics.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// AverageDuration returns the mean invocation duration.
func (m *Metrics) AverageDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.totalInvocations == 0 {
		return 0
	}
	return m.totalDuration / time.Duration(m.totalInvocations)
}

// CommandStats returns a copy of the metrics for name, or nil.
func (m *Metrics) CommandStats(name string) *CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cm := m.commands[name]
	if cm == nil {
		return nil
	}
	c := *cm
	return &c
}

// TopCommands returns the n most invoked commands.
func (m *Metrics) TopCommands(n int) []*CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*CommandMetrics, 0, len(m.commands))
	for _, cm := range m.commands {
		c := *cm
		out = append(out, &c)
	}

	slices.SortFunc(out, func(a, b *CommandMetrics) int {
		if c := cmp.Compare(b.InvocationCount, a.InvocationCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return out[:min(n, len(out))]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = make(map[string]*CommandMetrics)
	m.totalInvocations = 0
	m.totalErrors = 0
	m.totalNoOps = 0
	m.totalPanics = 0
	m.totalDuration = 0
}

// MetricsSnapshot is a point-in-time copy of the global counters.
type MetricsSnapshot struct {
	TotalInvocations uint64
	TotalErrors      uint64
	TotalNoOps       uint64
	TotalPanics      uint64
	TotalDuration    time.Duration
	AverageDuration  time.Duration
	CommandCount     int
	Timestamp        time.Time
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		TotalInvocations: m.totalInvocations,
		TotalErrors:      m.totalErrors,
		TotalNoOps:       m.totalNoOps,
		TotalPanics:      m.totalPanics,
		TotalDuration:    m.totalDuration,
		CommandCount:     len(m.commands),
		Timestamp:        time.Now(),
	}
	if m.totalInvocations > 0 {
		s.AverageDuration = m.totalDuration / time.Duration(m.totalInvocations)
	}
	return s
}

// AverageDuration returns the mean duration for this command.
func (cm *CommandMetrics) AverageDuration() time.Duration {
	if cm.InvocationCount == 0 {
		return 0
	}
	return cm.TotalDuration / time.Duration(cm.InvocationCount)
}

// ErrorRate returns the error rate as a percentage.
func (cm *CommandMetrics) ErrorRate() float64 {
	if cm.InvocationCount == 0 {
		return 0
	}
	return float64(cm.ErrorCount) / float64(cm.InvocationCount) * 100
}
