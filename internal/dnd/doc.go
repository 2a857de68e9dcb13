// Package dnd implements the drag-and-drop controller for a hierarchical,
// multi-selection list widget.
//
// The Controller is an input state machine:
//
//	Idle --press--> Armed --move past threshold--> Dragging --loop returns--> Idle
//	                  |                                            ^
//	                  +------release / nothing draggable-----------+
//
// A host wires three collaborators into it:
//
//   - a View: hit testing, selection, viewport geometry, the adorner layer,
//     the scroll target and the native drag loop (DragSource);
//   - a DragHandler: which items may be dragged and what value each
//     contributes to the payload;
//   - a DropHandler: whether a payload may land at a target (optionally at
//     an insertion index) and the commit action.
//
// # Drop Decisions
//
// While dragging, every drag-over resolves exactly one Decision for the row
// under the pointer. A pointer within InsertMargin of the row's top edge
// asks to insert before the row, within InsertMargin of the bottom edge to
// insert after it. Insert-after is never offered for a row whose children
// are expanded. Anything else falls through to a drop onto the row; with no
// row under the pointer the drop target is the root.
//
// # Threading
//
// The controller is not safe for concurrent use. All notifications must be
// delivered on the UI goroutine. DoDragDrop blocks inside PointerMove and
// calls back into DragOver, DragLeave and Drop on the same goroutine, so the
// controller takes no locks.
package dnd
