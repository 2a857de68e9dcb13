package app

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dshills/treedrop/internal/dnd"
)

// Metrics counts what happened during a session.
type Metrics struct {
	// Event processing
	eventCount   atomic.Uint64
	eventTotalNs atomic.Int64
	eventMaxNs   atomic.Int64

	// Drag sessions
	drags     atomic.Uint64
	drops     atomic.Uint64
	cancelled atomic.Uint64

	// Config reloads
	reloads      atomic.Uint64
	reloadErrors atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordEvent records the time spent handling one backend event outside a
// drag loop.
func (m *Metrics) RecordEvent(d time.Duration) {
	ns := d.Nanoseconds()
	m.eventCount.Add(1)
	m.eventTotalNs.Add(ns)

	for {
		old := m.eventMaxNs.Load()
		if ns <= old || m.eventMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordDrag records a finished drag loop.
func (m *Metrics) RecordDrag(effect dnd.Effect) {
	m.drags.Add(1)
	if effect == dnd.EffectMove {
		m.drops.Add(1)
	} else {
		m.cancelled.Add(1)
	}
}

// RecordReload records a config reload attempt.
func (m *Metrics) RecordReload(err error) {
	if err != nil {
		m.reloadErrors.Add(1)
		return
	}
	m.reloads.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.eventCount.Load()
	var avg int64
	if count > 0 {
		avg = m.eventTotalNs.Load() / int64(count)
	}
	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		Events:       count,
		AvgEventNs:   avg,
		MaxEventNs:   m.eventMaxNs.Load(),
		Drags:        m.drags.Load(),
		Drops:        m.drops.Load(),
		Cancelled:    m.cancelled.Load(),
		Reloads:      m.reloads.Load(),
		ReloadErrors: m.reloadErrors.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	Events       uint64
	AvgEventNs   int64
	MaxEventNs   int64
	Drags        uint64
	Drops        uint64 // drags that committed
	Cancelled    uint64 // drags that ended without a commit
	Reloads      uint64
	ReloadErrors uint64
}

// DropRate returns the percentage of drags that committed.
func (s MetricsSnapshot) DropRate() float64 {
	if s.Drags == 0 {
		return 0
	}
	return float64(s.Drops) / float64(s.Drags) * 100
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("events=%d avg=%s drags=%d drops=%d cancelled=%d reloads=%d/%d",
		s.Events, time.Duration(s.AvgEventNs), s.Drags, s.Drops, s.Cancelled,
		s.Reloads, s.Reloads+s.ReloadErrors)
}
