package dnd

import (
	"errors"
	"time"

	"github.com/dshills/treedrop/internal/dnd/adorner"
	"github.com/dshills/treedrop/internal/dnd/autoscroll"
	"github.com/dshills/treedrop/internal/geom"
	"github.com/dshills/treedrop/internal/input/pointer"
	"github.com/dshills/treedrop/internal/logging"
)

// Controller is the drag-and-drop state machine for one widget.
type Controller struct {
	view   View
	drag   DragHandler
	drop   DropHandler
	config Config
	log    *logging.Logger
	now    func() time.Time

	// pending holds a configuration received mid-session.
	pending *Config

	// Session state
	state      State
	start      geom.Point
	candidates []Row
	payload    Payload
	committed  bool

	// Feedback state
	target   Row
	adorners adorner.Slot
	scroller *autoscroll.Autoscroller
	effect   Effect
	decision Decision
}

// Option configures a Controller.
type Option func(*Controller)

// WithDragHandler registers the host's drag capability.
func WithDragHandler(h DragHandler) Option {
	return func(c *Controller) {
		c.drag = h
	}
}

// WithDropHandler registers the host's drop capability.
func WithDropHandler(h DropHandler) Option {
	return func(c *Controller) {
		c.drop = h
	}
}

// WithConfig sets the controller configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l.WithComponent("dnd")
		}
	}
}

// WithClock sets the time source used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a controller for view. Without handlers nothing can be
// dragged and every drop resolves to "not allowed".
func New(view View, opts ...Option) *Controller {
	c := &Controller{
		view:     view,
		config:   DefaultConfig(),
		log:      logging.NullLogger,
		now:      time.Now,
		decision: noDecision(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scroller = autoscroll.New(view, c.config.Autoscroll)
	return c
}

// Configure replaces the configuration. Mid-session changes are deferred
// until the controller returns to idle.
func (c *Controller) Configure(cfg Config) {
	if c.state != StateIdle {
		c.pending = &cfg
		return
	}
	c.config = cfg
	c.scroller.SetConfig(cfg.Autoscroll)
}

// Config returns the active configuration.
func (c *Controller) Config() Config {
	return c.config
}

// State returns the interaction state.
func (c *Controller) State() State {
	return c.state
}

// Effect returns the drag effect from the last evaluation.
func (c *Controller) Effect() Effect {
	return c.effect
}

// Decision returns the last evaluated decision.
func (c *Controller) Decision() Decision {
	return c.decision
}

// Adorner returns the live insertion adorner, or nil.
func (c *Controller) Adorner() *adorner.Adorner {
	return c.adorners.Current()
}

// DropTarget returns the row currently tracked under the pointer, or nil.
func (c *Controller) DropTarget() Row {
	return c.target
}

// Candidates returns a copy of the rows captured at pointer-down.
func (c *Controller) Candidates() []Row {
	if len(c.candidates) == 0 {
		return nil
	}
	out := make([]Row, len(c.candidates))
	copy(out, c.candidates)
	return out
}

// Payload returns the payload of the live session.
func (c *Controller) Payload() Payload {
	return c.payload
}

// Autoscroller returns the controller's autoscroller for inspection.
func (c *Controller) Autoscroller() *autoscroll.Autoscroller {
	return c.scroller
}

// PointerDown arms the controller with the draggable items under p.
func (c *Controller) PointerDown(ev pointer.Event) {
	if c.state == StateDragging {
		return
	}
	c.Teardown()

	if c.view.OverScrollbar(ev.Position) {
		c.log.Debug("press over scrollbar ignored")
		return
	}

	c.start = ev.Position
	c.candidates = c.captureCandidates(ev.Position)
	if len(c.candidates) == 0 {
		return
	}
	c.state = StateArmed
	c.log.Debug("armed with %d candidate(s) at %v", len(c.candidates), ev.Position)
}

// PointerMove starts a drag once the pointer has moved far enough.
func (c *Controller) PointerMove(ev pointer.Event) {
	if c.state != StateArmed {
		return
	}
	if !c.config.Threshold.Exceeded(c.start, ev.Position) {
		c.adorners.Clear()
		return
	}
	if !ev.Buttons.Has(pointer.ButtonLeft) {
		// The release was lost; nothing is held any more.
		c.Teardown()
		return
	}
	c.runSession()
}

// PointerUp returns an armed controller to idle.
func (c *Controller) PointerUp(_ pointer.Event) {
	if c.state == StateDragging {
		return
	}
	c.Teardown()
}

// DragEnter evaluates the position where a drag enters the widget.
func (c *Controller) DragEnter(ev DragEvent) Effect {
	return c.DragOver(ev)
}

// DragOver evaluates the pointer position and updates feedback.
func (c *Controller) DragOver(ev DragEvent) Effect {
	p := ev.Position

	if c.scroller.Enabled() && ev.Buttons.Has(pointer.ButtonLeft) {
		if delta := c.scroller.Direction(p, c.view.ViewportBounds()); delta != 0 {
			c.scroller.Tick(c.timestamp(ev), delta)
			return c.effect
		}
	}
	c.scroller.Reset()

	if a := c.adorners.Current(); a != nil && a.Contains(p) {
		return c.effect
	}

	row := c.view.RowAt(p)
	c.track(row)
	c.apply(c.resolve(row, p, c.payloadFor(ev)))
	return c.effect
}

// DragLeave clears feedback when the pointer leaves the widget.
func (c *Controller) DragLeave(ev DragEvent) {
	if c.view.Bounds().Contains(ev.Position) {
		return
	}
	c.clearVisuals()
	c.scroller.Reset()
	c.effect = EffectNone
	c.decision = noDecision(nil)
}

// Drop resolves the final position and commits at most once.
func (c *Controller) Drop(ev DragEvent) Effect {
	defer c.clearVisuals()

	payload := c.payloadFor(ev)
	row := c.view.RowAt(ev.Position)
	c.track(row)
	d := c.resolve(row, ev.Position, payload)
	c.decision = d

	if d.Kind == DecisionNone {
		c.effect = EffectNone
		c.log.Debug("drop at %v not allowed", ev.Position)
		return EffectNone
	}

	if c.state == StateDragging {
		if c.committed {
			c.log.Warn("%v", ErrAlreadyCommitted)
			c.effect = EffectNone
			return EffectNone
		}
		c.committed = true
	}

	if err := c.commit(d, payload); err != nil {
		c.log.Error("commit %s failed: %v", d, err)
		c.effect = EffectNone
		return EffectNone
	}
	c.log.Debug("committed %s with %s", d, payload)
	c.effect = EffectMove
	return EffectMove
}

// Teardown returns the controller to idle and removes all transient
// feedback. It is safe to call at any time and any number of times.
func (c *Controller) Teardown() {
	c.clearVisuals()
	c.scroller.Disable()
	c.state = StateIdle
	c.candidates = nil
	c.payload = Payload{}
	c.committed = false
	c.effect = EffectNone
	c.decision = noDecision(nil)

	if c.pending != nil {
		cfg := *c.pending
		c.pending = nil
		c.Configure(cfg)
	}
}

// runSession builds the payload, runs the native drag loop and tears down.
func (c *Controller) runSession() {
	payload := c.buildPayload()
	if payload.IsEmpty() {
		c.log.Debug("no candidate approved at drag start")
		c.Teardown()
		return
	}

	c.state = StateDragging
	c.payload = payload
	c.committed = false
	c.effect = EffectNone
	c.scroller.Enable()
	c.log.Debug("drag started with %s", payload)

	result := EffectNone
	err := c.guard("DoDragDrop", func() {
		result = c.view.DoDragDrop(payload.Clone(), EffectMove, c)
	})
	if err != nil {
		c.log.Warn("%v", err)
		result = EffectNone
	}

	c.log.Debug("drag ended with effect %s", result)
	c.Teardown()
}

func (c *Controller) buildPayload() Payload {
	items := make([]DraggedItem, 0, len(c.candidates))
	for _, row := range c.candidates {
		item := row.Item()
		if !c.canDrag(item) {
			continue
		}
		if d, ok := c.dragStarted(item); ok {
			items = append(items, d)
		}
	}
	return NewPayload(items...)
}

// captureCandidates returns the selected draggable rows when p is over the
// selection, otherwise the draggable row under p.
func (c *Controller) captureCandidates(p geom.Point) []Row {
	hit := c.view.RowAt(p)
	if hit == nil {
		return nil
	}

	selected := c.view.SelectedRows()
	if overSelection(hit, selected) {
		var out []Row
		for _, row := range selected {
			if c.canDrag(row.Item()) {
				out = append(out, row)
			}
		}
		return out
	}

	if c.canDrag(hit.Item()) {
		return []Row{hit}
	}
	return nil
}

// overSelection reports whether hit itself is selected. A selected
// ancestor does not count.
func overSelection(hit Row, selected []Row) bool {
	for _, s := range selected {
		if s == hit {
			return true
		}
	}
	return false
}

// track moves the tracked row, clearing the highlight of the previous one.
func (c *Controller) track(row Row) {
	if row == c.target {
		return
	}
	if c.target != nil {
		c.target.SetDropTarget(false)
	}
	c.target = row
}

// resolve computes the decision for p over row.
func (c *Controller) resolve(row Row, p geom.Point, payload Payload) Decision {
	if d, ok := c.canInsert(row, p, payload); ok {
		return d
	}
	if c.canDropOnto(row, payload) {
		return Decision{Kind: DecisionDrop, Target: row, Index: NoIndex}
	}
	return noDecision(row)
}

func (c *Controller) canInsert(row Row, p geom.Point, payload Payload) (Decision, bool) {
	if c.drop == nil || row == nil {
		return Decision{}, false
	}

	bounds := row.Bounds()
	y := bounds.Local(p).Y
	margin := c.config.InsertMargin

	var before bool
	switch {
	case y < margin:
		before = true
	case y > bounds.H-margin:
		if row.HasExpandedChildren() {
			return Decision{}, false
		}
		before = false
	default:
		return Decision{}, false
	}

	parent := row.Parent()
	index := row.Index()
	if !before {
		index++
	}

	if !c.canAcceptDrop(itemOf(parent), payload, index) {
		return Decision{}, false
	}
	return Decision{
		Kind:   DecisionInsert,
		Target: row,
		Parent: parent,
		Index:  index,
		Before: before,
	}, true
}

func (c *Controller) canDropOnto(row Row, payload Payload) bool {
	if c.drop == nil {
		return false
	}
	return c.canAcceptDrop(itemOf(row), payload, NoIndex)
}

// apply updates adorner, highlight and effect to match d.
func (c *Controller) apply(d Decision) {
	c.decision = d

	switch d.Kind {
	case DecisionInsert:
		c.effect = EffectMove
		cur := c.adorners.Current()
		if cur == nil || cur.Anchor() != adorner.Anchor(d.Target) || cur.Before() != d.Before {
			c.adorners.Replace(c.view, d.Target, d.Before, c.config.AdornerThickness)
		}
		d.Target.SetDropTarget(false)

	case DecisionDrop:
		c.adorners.Clear()
		c.effect = EffectMove
		if d.Target != nil {
			d.Target.SetDropTarget(true)
		}

	default:
		c.adorners.Clear()
		c.effect = EffectNone
		if c.target != nil {
			c.target.SetDropTarget(false)
		}
	}
}

func (c *Controller) clearVisuals() {
	c.adorners.Clear()
	if c.target != nil {
		c.target.SetDropTarget(false)
		c.target = nil
	}
}

func (c *Controller) payloadFor(ev DragEvent) Payload {
	if ev.Payload.IsEmpty() && c.state == StateDragging {
		return c.payload
	}
	return ev.Payload
}

func (c *Controller) timestamp(ev DragEvent) time.Time {
	if ev.Timestamp.IsZero() {
		return c.now()
	}
	return ev.Timestamp
}

// Host calls. A panicking callback counts as a denial.

func (c *Controller) canDrag(item Item) bool {
	if c.drag == nil {
		return false
	}
	var ok bool
	if err := c.guard("CanDrag", func() { ok = c.drag.CanDrag(item) }); err != nil {
		c.log.Warn("%v", err)
		return false
	}
	return ok
}

func (c *Controller) dragStarted(item Item) (DraggedItem, bool) {
	var d DraggedItem
	if err := c.guard("DragStarted", func() { d = c.drag.DragStarted(item) }); err != nil {
		c.log.Warn("%v", err)
		return DraggedItem{}, false
	}
	return d, true
}

func (c *Controller) canAcceptDrop(target Item, payload Payload, index int) bool {
	var ok bool
	if err := c.guard("CanAcceptDrop", func() { ok = c.drop.CanAcceptDrop(target, payload, index) }); err != nil {
		c.log.Warn("%v", err)
		return false
	}
	return ok
}

func (c *Controller) commit(d Decision, payload Payload) error {
	if c.drop == nil {
		return ErrNoDropHandler
	}
	var cerr error
	if err := c.guard("CommitDrop", func() {
		cerr = c.drop.CommitDrop(d.CommitTarget(), payload, d.CommitIndex())
	}); err != nil {
		return err
	}
	if cerr != nil {
		return &HostError{Op: "CommitDrop", Err: cerr}
	}
	return nil
}

func (c *Controller) guard(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HostError{Op: op, Panic: r}
		}
	}()
	fn()
	return nil
}

// IsHostFailure reports whether err came from a host callback.
func IsHostFailure(err error) bool {
	var he *HostError
	return errors.As(err, &he)
}
