package dnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecisionCommitArguments(t *testing.T) {
	parent := &fakeRow{name: "P"}
	child := &fakeRow{name: "C", parent: parent, index: 2}

	tests := []struct {
		name   string
		d      Decision
		target Item
		index  int
		str    string
	}{
		{
			name:  "none",
			d:     noDecision(child),
			index: NoIndex,
			str:   "none",
		},
		{
			name:  "drop onto root",
			d:     Decision{Kind: DecisionDrop, Index: NoIndex},
			index: NoIndex,
			str:   "drop onto root",
		},
		{
			name:   "drop onto row",
			d:      Decision{Kind: DecisionDrop, Target: child, Index: NoIndex},
			target: "C",
			index:  NoIndex,
			str:    "drop onto C",
		},
		{
			name:   "insert after",
			d:      Decision{Kind: DecisionInsert, Target: child, Parent: parent, Index: 3},
			target: "P",
			index:  3,
			str:    "insert after C at 3",
		},
		{
			name:  "insert before at root",
			d:     Decision{Kind: DecisionInsert, Target: parent, Index: 0, Before: true},
			index: 0,
			str:   "insert before P at 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.target, tt.d.CommitTarget())
			assert.Equal(t, tt.index, tt.d.CommitIndex())
			assert.Equal(t, tt.str, tt.d.String())
		})
	}
}

func TestStateAndEffectStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "armed", StateArmed.String())
	assert.Equal(t, "dragging", StateDragging.String())
	assert.Equal(t, "move", EffectMove.String())
	assert.Equal(t, "none", EffectNone.String())
	assert.Equal(t, "insert", DecisionInsert.String())
}
