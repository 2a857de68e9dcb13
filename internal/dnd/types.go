package dnd

import (
	"time"

	"github.com/dshills/treedrop/internal/dnd/adorner"
	"github.com/dshills/treedrop/internal/dnd/autoscroll"
	"github.com/dshills/treedrop/internal/geom"
	"github.com/dshills/treedrop/internal/input/pointer"
)

// NoIndex marks a drop onto a target rather than an insertion.
const NoIndex = -1

// State is the controller's interaction state.
type State uint8

const (
	// StateIdle means no pointer interaction is in progress.
	StateIdle State = iota
	// StateArmed means the pointer is down over draggable items.
	StateArmed
	// StateDragging means a drag session is live.
	StateDragging
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Effect is the drag effect requested from the platform.
type Effect uint8

const (
	// EffectNone shows the no-drop cursor.
	EffectNone Effect = iota
	// EffectMove accepts the drop.
	EffectMove
)

// String returns the effect name.
func (e Effect) String() string {
	if e == EffectMove {
		return "move"
	}
	return "none"
}

// Item is the host node behind a row. The controller never inspects it.
// A nil Item passed to a DropHandler denotes the root collection.
type Item any

// Row is one rendered tree item.
//
// Implementations must return an untyped nil from Parent for top-level rows.
type Row interface {
	adorner.Anchor

	// Item returns the host node shown by the row.
	Item() Item

	// Parent returns the parent row, or nil for top-level rows.
	Parent() Row

	// Index returns the row's position among its parent's children.
	Index() int

	// HasExpandedChildren reports whether the row currently shows children.
	HasExpandedChildren() bool

	// SetDropTarget sets the "current drop target" highlight.
	SetDropTarget(on bool)

	// IsDropTarget returns the highlight flag.
	IsDropTarget() bool
}

// HitTester resolves pointer positions to rows.
type HitTester interface {
	// RowAt returns the topmost row under p, or nil.
	RowAt(p geom.Point) Row

	// OverScrollbar reports whether p lies on a scrollbar.
	OverScrollbar(p geom.Point) bool
}

// Selection exposes the widget's selected rows.
type Selection interface {
	SelectedRows() []Row
}

// Viewport exposes the widget's geometry.
type Viewport interface {
	// Bounds returns the widget's full bounds.
	Bounds() geom.Rect

	// ViewportBounds returns the visible scroll area used for autoscroll.
	ViewportBounds() geom.Rect
}

// DragSource runs the platform's drag loop.
type DragSource interface {
	// DoDragDrop blocks until the drag ends, delivering drag notifications
	// to target on the calling goroutine. It returns the final effect.
	DoDragDrop(payload Payload, allowed Effect, target DropTarget) Effect
}

// View is everything the controller needs from the hosting widget.
type View interface {
	HitTester
	Selection
	Viewport
	DragSource
	adorner.Layer
	autoscroll.Target
}

// DragEvent is a drag notification from the platform.
type DragEvent struct {
	// Position is the pointer location in widget coordinates.
	Position geom.Point

	// Buttons are the pointer buttons held.
	Buttons pointer.Button

	// Payload is the data being dragged.
	Payload Payload

	// Timestamp is when the event occurred. Zero means "now".
	Timestamp time.Time
}

// DropTarget receives drag notifications. Controller implements it.
type DropTarget interface {
	DragEnter(ev DragEvent) Effect
	DragOver(ev DragEvent) Effect
	DragLeave(ev DragEvent)
	Drop(ev DragEvent) Effect
}
