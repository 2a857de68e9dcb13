// Package pointer provides the pointer input vocabulary consumed by the
// drag-and-drop engine.
//
// Hosts translate their native mouse events into pointer.Event values:
//
//	ev := pointer.Event{
//	    Position:  geom.Pt(12, 40),
//	    Buttons:   pointer.ButtonLeft,
//	    Action:    pointer.ActionPress,
//	    Timestamp: time.Now(),
//	}
//
// # Buttons
//
// Buttons is a bitmask of the buttons held while the event was produced.
// A release event carries the buttons that remain held afterwards.
//
// # Drag Threshold
//
// Threshold holds the minimum horizontal and vertical displacement a pointer
// must travel from its press position before a drag starts. Either axis
// reaching its minimum is enough.
package pointer
