package dnd

import (
	"github.com/dshills/treedrop/internal/dnd/autoscroll"
	"github.com/dshills/treedrop/internal/input/pointer"
)

// Config configures the controller.
type Config struct {
	// Threshold is the minimum pointer travel that starts a drag.
	Threshold pointer.Threshold

	// InsertMargin is the band at a row's top and bottom edges that selects
	// insertion instead of a drop onto the row.
	InsertMargin float64

	// AdornerThickness is the height of the insertion marker.
	AdornerThickness float64

	// Autoscroll configures edge scrolling while dragging.
	Autoscroll autoscroll.Config
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:        pointer.DefaultThreshold(),
		InsertMargin:     5,
		AdornerThickness: 2,
		Autoscroll:       autoscroll.DefaultConfig(),
	}
}
