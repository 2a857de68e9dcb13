package policy

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/logging"
	"github.com/dshills/treedrop/internal/tree"
)

// Script hook names.
const (
	FuncCanDrag = "can_drag"
	FuncCanDrop = "can_drop"
)

// Policy wraps host handlers and lets a script veto their answers.
// A script can only narrow permissions: when the base handler denies,
// the script is not consulted.
type Policy struct {
	state *State
	drag  dnd.DragHandler
	drop  dnd.DropHandler
	log   *logging.Logger
}

// Option configures a Policy.
type Option func(*Policy)

// WithLogger sets the logger. Scripts can write to it through log(msg).
func WithLogger(l *logging.Logger) Option {
	return func(p *Policy) {
		if l != nil {
			p.log = l.WithComponent("policy")
		}
	}
}

// New creates a policy over state. Either handler may be nil.
func New(state *State, drag dnd.DragHandler, drop dnd.DropHandler, opts ...Option) *Policy {
	p := &Policy{
		state: state,
		drag:  drag,
		drop:  drop,
		log:   logging.NullLogger,
	}
	for _, opt := range opts {
		opt(p)
	}
	state.RegisterFunc("log", func(L *lua.LState) int {
		p.log.Info("%s", L.CheckString(1))
		return 0
	})
	state.RegisterFunc("print", func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		p.log.Info("%s", strings.Join(parts, " "))
		return 0
	})
	return p
}

// LoadFile creates a policy from the script at path.
func LoadFile(path string, drag dnd.DragHandler, drop dnd.DropHandler, opts ...Option) (*Policy, error) {
	state := NewState()
	p := New(state, drag, drop, opts...)
	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, fmt.Errorf("load policy %s: %w", path, err)
	}
	p.log.Info("loaded %s (can_drag=%t can_drop=%t)", path,
		state.HasFunction(FuncCanDrag), state.HasFunction(FuncCanDrop))
	return p, nil
}

// Close releases the script state.
func (p *Policy) Close() error {
	return p.state.Close()
}

// CanDrag implements dnd.DragHandler.
func (p *Policy) CanDrag(item dnd.Item) bool {
	if p.drag == nil || !p.drag.CanDrag(item) {
		return false
	}
	return p.ask(FuncCanDrag, p.nodeValue(item))
}

// DragStarted implements dnd.DragHandler.
func (p *Policy) DragStarted(item dnd.Item) dnd.DraggedItem {
	if p.drag == nil {
		return dnd.ItemRef(item)
	}
	return p.drag.DragStarted(item)
}

// CanAcceptDrop implements dnd.DropHandler.
func (p *Policy) CanAcceptDrop(target dnd.Item, payload dnd.Payload, index int) bool {
	if p.drop == nil || !p.drop.CanAcceptDrop(target, payload, index) {
		return false
	}
	var idx lua.LValue = lua.LNil
	if index != dnd.NoIndex {
		idx = lua.LNumber(index)
	}
	return p.ask(FuncCanDrop, p.nodeValue(target), p.payloadValue(payload), idx)
}

// CommitDrop implements dnd.DropHandler.
func (p *Policy) CommitDrop(target dnd.Item, payload dnd.Payload, index int) error {
	if p.drop == nil {
		return dnd.ErrNoDropHandler
	}
	return p.drop.CommitDrop(target, payload, index)
}

// ask calls fn if the script defines it. Script errors deny.
func (p *Policy) ask(fn string, args ...lua.LValue) bool {
	if !p.state.HasFunction(fn) {
		return true
	}
	ret, err := p.state.Call(fn, args...)
	if err != nil {
		p.log.Warn("%s: %v", fn, err)
		return false
	}
	if len(ret) == 0 {
		return false
	}
	return lua.LVAsBool(ret[0])
}

// nodeValue converts a host item into a Lua table, or nil for the root.
func (p *Policy) nodeValue(item dnd.Item) lua.LValue {
	if item == nil {
		return lua.LNil
	}
	L := p.state.L
	t := L.NewTable()
	n, ok := item.(*tree.Node)
	if !ok {
		t.RawSetString("kind", lua.LString("value"))
		t.RawSetString("name", lua.LString(fmt.Sprint(item)))
		return t
	}
	t.RawSetString("kind", lua.LString("item"))
	t.RawSetString("id", lua.LString(n.ID.String()))
	t.RawSetString("name", lua.LString(n.Name))
	t.RawSetString("path", lua.LString(n.Path()))
	t.RawSetString("drag", lua.LBool(n.AllowDrag))
	t.RawSetString("drop", lua.LBool(n.AllowDrop))
	t.RawSetString("insert", lua.LBool(n.AllowInsert))
	t.RawSetString("expanded", lua.LBool(n.Expanded))
	t.RawSetString("children", lua.LNumber(n.Len()))
	return t
}

// payloadValue converts a payload into a Lua array of tables.
func (p *Policy) payloadValue(payload dnd.Payload) lua.LValue {
	L := p.state.L
	arr := L.NewTable()
	for _, it := range payload.Items() {
		switch it.Kind {
		case dnd.KindItem:
			arr.Append(p.nodeValue(it.Item))
		case dnd.KindValue:
			t := L.NewTable()
			t.RawSetString("kind", lua.LString("value"))
			t.RawSetString("name", lua.LString(fmt.Sprint(it.Value)))
			arr.Append(t)
		default:
			t := L.NewTable()
			t.RawSetString("kind", lua.LString("unknown"))
			arr.Append(t)
		}
	}
	return arr
}
