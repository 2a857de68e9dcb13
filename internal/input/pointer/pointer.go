package pointer

import (
	"math"
	"strings"
	"time"

	"github.com/dshills/treedrop/internal/geom"
)

// Button is a bitmask of pointer buttons.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = 0
	// ButtonLeft is the primary (left) button.
	ButtonLeft Button = 1 << iota
	// ButtonMiddle is the middle button.
	ButtonMiddle
	// ButtonRight is the secondary (right) button.
	ButtonRight
)

// Has returns true if every button in other is held in b.
func (b Button) Has(other Button) bool {
	return other != ButtonNone && b&other == other
}

// String returns a string representation of the button mask.
func (b Button) String() string {
	if b == ButtonNone {
		return "none"
	}
	var parts []string
	if b.Has(ButtonLeft) {
		parts = append(parts, "left")
	}
	if b.Has(ButtonMiddle) {
		parts = append(parts, "middle")
	}
	if b.Has(ButtonRight) {
		parts = append(parts, "right")
	}
	return strings.Join(parts, "+")
}

// Modifier is a bitmask of keyboard modifiers held during a pointer event.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the mask contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// Action is the kind of pointer event.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
	// ActionMove indicates movement, with or without buttons held.
	ActionMove
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionMove:
		return "move"
	default:
		return "none"
	}
}

// Event is a pointer event in widget-local coordinates.
type Event struct {
	// Position is the pointer location.
	Position geom.Point

	// Buttons are the buttons held after the event.
	Buttons Button

	// Modifiers are the keyboard modifiers held.
	Modifiers Modifier

	// Action is the kind of event.
	Action Action

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Threshold is the minimum displacement that turns a press into a drag.
type Threshold struct {
	Horizontal float64
	Vertical   float64
}

// DefaultThreshold mirrors the common platform minimum drag distance.
func DefaultThreshold() Threshold {
	return Threshold{Horizontal: 4, Vertical: 4}
}

// Exceeded reports whether the move from start to now reaches the threshold
// on either axis.
func (t Threshold) Exceeded(start, now geom.Point) bool {
	d := now.Sub(start)
	return math.Abs(d.X) >= t.Horizontal || math.Abs(d.Y) >= t.Vertical
}
