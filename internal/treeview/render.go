package treeview

import (
	"fmt"

	"github.com/dshills/treedrop/internal/renderer/backend"
)

var (
	styleNormal   = backend.DefaultStyle()
	styleLocked   = backend.DefaultStyle().With(backend.AttrDim)
	styleSelected = backend.DefaultStyle().Foreground(backend.ColorWhite).Background(backend.ColorBlue)
	styleTarget   = backend.DefaultStyle().Foreground(backend.ColorBlack).Background(backend.ColorYellow).With(backend.AttrBold)
	styleMarker   = backend.DefaultStyle().Foreground(backend.ColorYellow).With(backend.AttrBold)
	styleChrome   = backend.DefaultStyle().Foreground(backend.ColorGray)
	styleStatus   = backend.DefaultStyle().With(backend.AttrReverse)
)

const (
	glyphExpanded  = '▾'
	glyphCollapsed = '▸'
	glyphLeaf      = '•'
	glyphFocus     = '›'
	glyphMarker    = '─'
	glyphTrack     = '│'
	glyphThumb     = '█'
	glyphMoreUp    = '▲'
	glyphMoreDown  = '▼'
)

const keyHints = "↑↓ move  space expand  ctrl-click multi  m mode  q quit"

// Draw renders the widget and flushes it to the terminal.
func (v *View) Draw() {
	v.Refresh()

	b := v.backend
	b.Clear()
	w, list := v.listWidth()
	top, height := v.listArea()
	rh := max(v.cfg.RowHeight, 1)
	offset := v.scrollCells()

	markers := make(map[*Row]bool, len(v.adorners))
	for _, a := range v.adorners {
		if r, ok := a.Anchor().(*Row); ok && !a.Disposed() {
			markers[r] = a.Before()
		}
	}

	for _, r := range v.rows {
		rowTop := top + r.pos*rh - offset
		if rowTop+rh <= top || rowTop >= top+height {
			continue
		}
		before, marked := markers[r]
		v.drawRow(r, rowTop, list, top, height, marked, before)
	}

	v.drawChrome(w, list, top, height)
	b.Show()
}

func (v *View) drawRow(r *Row, rowTop, width, top, height int, marked, before bool) {
	rh := max(v.cfg.RowHeight, 1)
	labelY := rowTop + rh/2
	x := 1 + r.depth*v.cfg.Indent
	visible := func(y int) bool { return y >= top && y < top+height }

	style := styleNormal
	switch {
	case r.target:
		style = styleTarget
	case v.selected[r.node]:
		style = styleSelected
	case !r.node.AllowDrag:
		style = styleLocked
	}

	markerY := rowTop + rh - 1
	if before {
		markerY = rowTop
	}
	if marked && markerY == labelY {
		style = style.With(backend.AttrUnderline)
	}

	if visible(labelY) {
		if r.target || v.selected[r.node] {
			v.backend.Fill(backend.Rect{X: x, Y: labelY, W: width - x, H: 1}, ' ', style)
		}
		if r.node == v.focus {
			v.backend.SetContent(0, labelY, glyphFocus, styleNormal)
		}
		glyph := glyphLeaf
		if r.node.HasChildren() {
			glyph = glyphCollapsed
			if r.node.Expanded {
				glyph = glyphExpanded
			}
		}
		v.put(x, labelY, string(glyph)+" "+r.node.Name, style, width)
	}

	if marked && markerY != labelY && visible(markerY) {
		for mx := x; mx < width; mx++ {
			v.backend.SetContent(mx, markerY, glyphMarker, styleMarker)
		}
	}
}

func (v *View) drawChrome(w, list, top, height int) {
	wh := v.widgetHeight()
	if v.cfg.Gutter > 0 && wh > 0 {
		v.put(0, 0, v.title, styleChrome.With(backend.AttrBold), w)
		if wh > 1 {
			v.put(0, wh-1, keyHints, styleChrome, w)
		}
	}

	offset := v.scrollCells()
	total := len(v.rows) * max(v.cfg.RowHeight, 1)
	if offset > 0 && top > 1 {
		v.backend.SetContent(list/2, top-1, glyphMoreUp, styleChrome)
	}
	if offset+height < total && top+height < wh-1 {
		v.backend.SetContent(list/2, top+height, glyphMoreDown, styleChrome)
	}

	if w > 0 && height > 0 {
		for y := top; y < top+height; y++ {
			v.backend.SetContent(w-1, y, glyphTrack, styleChrome)
		}
		if total > height {
			size := max(1, height*height/total)
			pos := offset * height / total
			for y := 0; y < size && pos+y < height; y++ {
				v.backend.SetContent(w-1, top+pos+y, glyphThumb, styleChrome)
			}
		}
	}

	if v.cfg.ShowStatus {
		_, h := v.backend.Size()
		v.backend.Fill(backend.Rect{X: 0, Y: h - 1, W: w, H: 1}, ' ', styleStatus)
		text := v.status
		if v.dragging {
			text = v.dragInfo
		}
		v.put(1, h-1, text, styleStatus, w)
	}
}

// put draws s from x, clipped at maxX. Each rune takes one cell.
func (v *View) put(x, y int, s string, style backend.Style, maxX int) {
	for _, r := range s {
		if x >= maxX {
			return
		}
		v.backend.SetContent(x, y, r, style)
		x++
	}
}

func describeDrag(n int, accepted bool) string {
	verdict := "no drop here"
	if accepted {
		verdict = "drop allowed"
	}
	return fmt.Sprintf("dragging %d item(s): %s  (esc cancels)", n, verdict)
}
