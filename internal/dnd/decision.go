package dnd

import "fmt"

// DecisionKind tags what a drop at the current position would do.
type DecisionKind uint8

const (
	// DecisionNone means the drop is not allowed.
	DecisionNone DecisionKind = iota
	// DecisionDrop means the payload is dropped onto the target.
	DecisionDrop
	// DecisionInsert means the payload is inserted among the target's siblings.
	DecisionInsert
)

// String returns the kind name.
func (k DecisionKind) String() string {
	switch k {
	case DecisionDrop:
		return "drop"
	case DecisionInsert:
		return "insert"
	default:
		return "none"
	}
}

// Decision is the outcome of evaluating a pointer position.
type Decision struct {
	Kind DecisionKind

	// Target is the row under the pointer. For DecisionDrop a nil Target
	// means the root collection.
	Target Row

	// Parent is the insertion parent for DecisionInsert; nil is the root.
	Parent Row

	// Index is the insertion index for DecisionInsert, NoIndex otherwise.
	Index int

	// Before is true when inserting before Target.
	Before bool
}

func noDecision(row Row) Decision {
	return Decision{Kind: DecisionNone, Target: row, Index: NoIndex}
}

// CommitTarget returns the item passed to the DropHandler: the drop target
// for DecisionDrop, the insertion parent for DecisionInsert. Nil is the root.
func (d Decision) CommitTarget() Item {
	switch d.Kind {
	case DecisionInsert:
		return itemOf(d.Parent)
	case DecisionDrop:
		return itemOf(d.Target)
	default:
		return nil
	}
}

// CommitIndex returns the index passed to the DropHandler.
func (d Decision) CommitIndex() int {
	if d.Kind == DecisionInsert {
		return d.Index
	}
	return NoIndex
}

// String returns a short description for logs.
func (d Decision) String() string {
	switch d.Kind {
	case DecisionInsert:
		side := "after"
		if d.Before {
			side = "before"
		}
		return fmt.Sprintf("insert %s %v at %d", side, itemOf(d.Target), d.Index)
	case DecisionDrop:
		if d.Target == nil {
			return "drop onto root"
		}
		return fmt.Sprintf("drop onto %v", itemOf(d.Target))
	default:
		return "none"
	}
}

func itemOf(r Row) Item {
	if r == nil {
		return nil
	}
	return r.Item()
}
