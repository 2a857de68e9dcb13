package treeview

import (
	"github.com/dshills/treedrop/internal/input/pointer"
	"github.com/dshills/treedrop/internal/renderer/backend"
)

// Handle processes one backend event outside a drag. It returns false for
// events the widget does not use, such as unbound keys.
func (v *View) Handle(ev backend.Event) bool {
	switch ev.Type {
	case backend.EventMouse:
		v.handleMouse(ev)
		return true
	case backend.EventKey:
		return v.handleKey(ev)
	case backend.EventResize:
		v.Refresh()
		return true
	case backend.EventInterrupt:
		// A tick left over from a finished drag loop.
		_, ok := ev.Data.(dragTick)
		return ok
	default:
		return false
	}
}

func (v *View) handleMouse(ev backend.Event) {
	switch {
	case ev.Buttons.Has(backend.MouseWheelUp):
		v.ScrollBy(-v.rowUnits())
		return
	case ev.Buttons.Has(backend.MouseWheelDown):
		v.ScrollBy(v.rowUnits())
		return
	}

	pe := v.pointerEvent(ev)
	wasDown := v.buttons.Has(backend.MouseLeft)
	isDown := ev.Buttons.Has(backend.MouseLeft)
	v.buttons = ev.Buttons
	v.lastPointer = pe

	switch {
	case isDown && !wasDown:
		pe.Action = pointer.ActionPress
		v.press(pe, ev.X)
	case wasDown && !isDown:
		pe.Action = pointer.ActionRelease
		v.release(pe)
	default:
		pe.Action = pointer.ActionMove
		if v.pointer != nil {
			v.pointer.PointerMove(pe)
		}
	}
}

// press hands the event to the controller before the selection changes so
// a press on a selected row picks up the whole selection.
func (v *View) press(pe pointer.Event, cellX int) {
	if v.pointer != nil {
		v.pointer.PointerDown(pe)
	}

	if v.OverScrollbar(pe.Position) {
		v.scrollTo(pe.Position.Y)
		return
	}

	r := v.rowAt(pe.Position)
	if r == nil {
		if !pe.Modifiers.Has(pointer.ModCtrl) {
			v.Select()
		}
		return
	}

	if cellX == 1+r.depth*v.cfg.Indent && r.node.HasChildren() {
		r.node.Expanded = !r.node.Expanded
		v.Refresh()
		return
	}

	v.focus = r.node
	switch {
	case pe.Modifiers.Has(pointer.ModCtrl):
		v.ToggleSelected(r.node)
	case v.selected[r.node]:
		// Keep the selection until release so it can be dragged.
		v.collapse = r.node
	default:
		v.Select(r.node)
	}
}

func (v *View) release(pe pointer.Event) {
	if v.pointer != nil {
		v.pointer.PointerUp(pe)
	}
	if v.collapse != nil {
		v.Select(v.collapse)
		v.collapse = nil
	}
}

// scrollTo jumps so the scrollbar thumb lands near y.
func (v *View) scrollTo(y float64) {
	lb := v.listBounds()
	if lb.H <= 0 {
		return
	}
	frac := (y - lb.Y) / lb.H
	target := frac * (v.maxScroll() + lb.H)
	v.ScrollBy(target - v.scroll)
}

func (v *View) handleKey(ev backend.Event) bool {
	switch ev.Key {
	case backend.KeyUp:
		v.moveFocus(-1)
	case backend.KeyDown:
		v.moveFocus(1)
	case backend.KeyHome:
		v.moveFocus(-len(v.rows))
	case backend.KeyEnd:
		v.moveFocus(len(v.rows))
	case backend.KeyPageUp:
		v.moveFocus(-v.pageRows())
	case backend.KeyPageDown:
		v.moveFocus(v.pageRows())
	case backend.KeyLeft:
		v.collapseOrParent()
	case backend.KeyRight:
		v.expandFocus(true)
	case backend.KeyEnter:
		v.toggleFocus()
	case backend.KeyEscape:
		v.Select()
	case backend.KeyRune:
		if ev.Rune != ' ' {
			return false
		}
		v.toggleFocus()
	default:
		return false
	}
	return true
}

func (v *View) pageRows() int {
	_, height := v.listArea()
	return max(1, height/max(v.cfg.RowHeight, 1))
}

func (v *View) focusRow() *Row {
	if v.focus == nil {
		return nil
	}
	return v.byNode[v.focus]
}

func (v *View) moveFocus(delta int) {
	if len(v.rows) == 0 {
		return
	}
	i := 0
	if r := v.focusRow(); r != nil {
		i = r.pos + delta
	}
	i = max(0, min(i, len(v.rows)-1))
	r := v.rows[i]
	v.Select(r.node)
	v.ensureVisible(r)
}

func (v *View) toggleFocus() {
	if r := v.focusRow(); r != nil {
		v.expandFocus(!r.node.Expanded)
	}
}

func (v *View) expandFocus(expand bool) {
	r := v.focusRow()
	if r == nil || !r.node.HasChildren() {
		return
	}
	r.node.Expanded = expand
	v.Refresh()
}

func (v *View) collapseOrParent() {
	r := v.focusRow()
	switch {
	case r == nil:
	case r.node.Expanded && r.node.HasChildren():
		v.expandFocus(false)
	case r.parent != nil:
		v.Select(r.parent.node)
		v.ensureVisible(r.parent)
	}
}

func (v *View) pointerEvent(ev backend.Event) pointer.Event {
	return pointer.Event{
		Position:  v.PointAt(ev.X, ev.Y),
		Buttons:   pointerButtons(ev.Buttons),
		Modifiers: pointerModifiers(ev.Mod),
		Timestamp: v.now(),
	}
}

func pointerButtons(b backend.MouseButton) pointer.Button {
	var out pointer.Button
	if b.Has(backend.MouseLeft) {
		out |= pointer.ButtonLeft
	}
	if b.Has(backend.MouseMiddle) {
		out |= pointer.ButtonMiddle
	}
	if b.Has(backend.MouseRight) {
		out |= pointer.ButtonRight
	}
	return out
}

func pointerModifiers(m backend.ModMask) pointer.Modifier {
	var out pointer.Modifier
	if m.Has(backend.ModShift) {
		out |= pointer.ModShift
	}
	if m.Has(backend.ModCtrl) {
		out |= pointer.ModCtrl
	}
	if m.Has(backend.ModAlt) {
		out |= pointer.ModAlt
	}
	return out
}
