package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/treedrop/internal/dnd"
)

func TestMetricsEvents(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.Snapshot().Events)
	assert.Zero(t, m.Snapshot().AvgEventNs)

	m.RecordEvent(10 * time.Millisecond)
	m.RecordEvent(30 * time.Millisecond)
	m.RecordEvent(20 * time.Millisecond)

	s := m.Snapshot()
	assert.Equal(t, uint64(3), s.Events)
	assert.Equal(t, int64(20*time.Millisecond), s.AvgEventNs)
	assert.Equal(t, int64(30*time.Millisecond), s.MaxEventNs)
}

func TestMetricsDragsAndReloads(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.Snapshot().DropRate())

	m.RecordDrag(dnd.EffectMove)
	m.RecordDrag(dnd.EffectNone)
	m.RecordDrag(dnd.EffectMove)
	m.RecordDrag(dnd.EffectMove)
	m.RecordReload(nil)
	m.RecordReload(errors.New("bad"))

	s := m.Snapshot()
	assert.Equal(t, uint64(4), s.Drags)
	assert.Equal(t, uint64(3), s.Drops)
	assert.Equal(t, uint64(1), s.Cancelled)
	assert.Equal(t, 75.0, s.DropRate())
	assert.Equal(t, uint64(1), s.Reloads)
	assert.Equal(t, uint64(1), s.ReloadErrors)
	assert.Contains(t, s.String(), "drags=4 drops=3 cancelled=1 reloads=1/2")
}
