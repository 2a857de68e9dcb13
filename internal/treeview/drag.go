package treeview

import (
	"time"

	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/geom"
	"github.com/dshills/treedrop/internal/input/pointer"
	"github.com/dshills/treedrop/internal/renderer/backend"
)

// dragTick is the interrupt that re-sends the last drag position.
type dragTick struct{}

// outside is a point no widget contains, used to leave on cancel.
var outside = geom.Pt(-1, -1)

// DoDragDrop implements dnd.DragSource. It owns the backend event queue
// until the left button is released or the drag is cancelled with Esc or
// Ctrl-C.
func (v *View) DoDragDrop(payload dnd.Payload, allowed dnd.Effect, target dnd.DropTarget) (result dnd.Effect) {
	v.dragging = true
	v.dragInfo = describeDrag(payload.Len(), false)
	defer func() {
		v.dragging = false
		v.buttons = backend.MouseNone
		v.lastPointer = pointer.Event{}
		v.collapse = nil
		if v.onDragEnd != nil {
			v.onDragEnd(result)
		}
	}()

	stop := v.startTicker()
	defer stop()

	v.log.Debug("drag loop started with %s", payload)

	var (
		inside bool
		last   dnd.DragEvent
	)
	leave := func() {
		if inside {
			target.DragLeave(dnd.DragEvent{Position: outside, Payload: payload, Timestamp: v.now()})
			inside = false
		}
	}
	update := func(effect dnd.Effect) {
		v.dragInfo = describeDrag(payload.Len(), effect == allowed && effect != dnd.EffectNone)
	}

	// The move that crossed the drag threshold is the first drag position.
	// A release right after it must still drop there.
	if start := v.lastPointer; start.Buttons.Has(pointer.ButtonLeft) {
		last = dnd.DragEvent{
			Position:  start.Position,
			Buttons:   start.Buttons,
			Payload:   payload,
			Timestamp: v.now(),
		}
		if v.Bounds().Contains(last.Position) {
			inside = true
			update(target.DragEnter(last))
		}
	}

	for {
		v.Draw()
		ev := v.backend.PollEvent()

		switch ev.Type {
		case backend.EventNone:
			leave()
			return dnd.EffectNone

		case backend.EventResize:
			v.Refresh()

		case backend.EventKey:
			if ev.Key == backend.KeyEscape || ev.Key == backend.KeyCtrlC {
				v.log.Debug("drag cancelled")
				leave()
				return dnd.EffectNone
			}

		case backend.EventInterrupt:
			if _, ok := ev.Data.(dragTick); ok {
				if inside && last.Buttons != 0 {
					last.Timestamp = v.now()
					update(target.DragOver(last))
				}
				continue
			}
			if v.onInterrupt != nil {
				v.onInterrupt(ev.Data)
			}

		case backend.EventMouse:
			if ev.Buttons.Has(backend.MouseWheelUp) || ev.Buttons.Has(backend.MouseWheelDown) {
				v.handleMouse(ev)
				if inside {
					last.Timestamp = v.now()
					update(target.DragOver(last))
				}
				continue
			}

			de := dnd.DragEvent{
				Position:  v.PointAt(ev.X, ev.Y),
				Buttons:   pointerButtons(ev.Buttons),
				Payload:   payload,
				Timestamp: v.now(),
			}

			if !ev.Buttons.Has(backend.MouseLeft) {
				if !inside || !v.Bounds().Contains(de.Position) {
					leave()
					return dnd.EffectNone
				}
				effect := target.Drop(de)
				v.log.Debug("drop returned %s", effect)
				if effect != allowed {
					v.backend.Beep()
					return dnd.EffectNone
				}
				return effect
			}

			switch in := v.Bounds().Contains(de.Position); {
			case in && !inside:
				inside = true
				update(target.DragEnter(de))
			case in:
				update(target.DragOver(de))
			case inside:
				target.DragLeave(de)
				inside = false
				update(dnd.EffectNone)
			}
			last = de
		}
	}
}

// startTicker posts dragTick interrupts until the returned function is
// called.
func (v *View) startTicker() func() {
	if v.cfg.DragTick <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(v.cfg.DragTick)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				_ = v.backend.PostInterrupt(dragTick{})
			}
		}
	}()
	return func() { close(done) }
}
