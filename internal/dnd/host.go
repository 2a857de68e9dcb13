package dnd

// DragHandler is the host's drag capability pair.
type DragHandler interface {
	// CanDrag reports whether item may be dragged.
	CanDrag(item Item) bool

	// DragStarted returns the payload element for item. Hosts may
	// substitute a value other than a reference to item.
	DragStarted(item Item) DraggedItem
}

// DropHandler is the host's drop capability pair.
//
// target is nil for the root collection. index is NoIndex for a drop onto
// target, otherwise the insertion index among target's children.
type DropHandler interface {
	// CanAcceptDrop reports whether payload may land at target/index.
	CanAcceptDrop(target Item, payload Payload, index int) bool

	// CommitDrop performs the drop. It is called at most once per session.
	CommitDrop(target Item, payload Payload, index int) error
}

// DragFuncs adapts plain functions to DragHandler. A nil Started yields a
// reference to the dragged item.
type DragFuncs struct {
	Can     func(item Item) bool
	Started func(item Item) DraggedItem
}

// CanDrag implements DragHandler.
func (f DragFuncs) CanDrag(item Item) bool {
	return f.Can != nil && f.Can(item)
}

// DragStarted implements DragHandler.
func (f DragFuncs) DragStarted(item Item) DraggedItem {
	if f.Started == nil {
		return ItemRef(item)
	}
	return f.Started(item)
}

// DropFuncs adapts plain functions to DropHandler.
type DropFuncs struct {
	Can    func(target Item, payload Payload, index int) bool
	Commit func(target Item, payload Payload, index int) error
}

// CanAcceptDrop implements DropHandler.
func (f DropFuncs) CanAcceptDrop(target Item, payload Payload, index int) bool {
	return f.Can != nil && f.Can(target, payload, index)
}

// CommitDrop implements DropHandler.
func (f DropFuncs) CommitDrop(target Item, payload Payload, index int) error {
	if f.Commit == nil {
		return ErrNoDropHandler
	}
	return f.Commit(target, payload, index)
}
