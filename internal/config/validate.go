package config

import (
	"strings"

	"github.com/dshills/treedrop/internal/host"
)

// Validate checks every setting and returns ValidationErrors, or nil.
func (c Config) Validate() error {
	var errs ValidationErrors
	check := func(ok bool, path, msg string, value any) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
		}
	}

	check(c.Drag.MinHorizontal >= 0, "drag.minHorizontal", "must not be negative", c.Drag.MinHorizontal)
	check(c.Drag.MinVertical >= 0, "drag.minVertical", "must not be negative", c.Drag.MinVertical)
	check(c.Drag.InsertMargin >= 0, "drag.insertMargin", "must not be negative", c.Drag.InsertMargin)

	check(c.Autoscroll.Border >= 0, "autoscroll.border", "must not be negative", c.Autoscroll.Border)
	check(c.Autoscroll.Step > 0, "autoscroll.step", "must be positive", c.Autoscroll.Step)
	check(c.Autoscroll.Interval > 0, "autoscroll.interval", "must be positive", c.Autoscroll.Interval.Std())

	check(c.Adorner.Thickness > 0, "adorner.thickness", "must be positive", c.Adorner.Thickness)

	check(c.View.UnitsPerCell > 0, "view.unitsPerCell", "must be positive", c.View.UnitsPerCell)
	check(c.View.RowHeight > 0, "view.rowHeight", "must be positive", c.View.RowHeight)
	check(c.View.Indent >= 0, "view.indent", "must not be negative", c.View.Indent)
	if c.View.UnitsPerCell > 0 && c.View.RowHeight > 0 {
		rowUnits := c.View.UnitsPerCell * c.View.RowHeight
		check(2*c.Drag.InsertMargin <= rowUnits, "drag.insertMargin",
			"must leave room for drops onto the row (at most half the row height in units)", c.Drag.InsertMargin)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		check(false, "logging.level", "must be one of debug, info, warn, error", c.Logging.Level)
	}

	_, err := host.ParseMode(c.Host.Mode)
	check(err == nil, "host.mode", "must be move or copy", c.Host.Mode)

	if len(errs) == 0 {
		return nil
	}
	return errs
}
