// Package policy lets a Lua script veto drag and drop permissions.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. A policy script may define either of:
//
//	function can_drag(node) return node.name ~= "Trash" end
//	function can_drop(target, payload, index) return true end
//
// target is nil for the root collection and index is nil for onto-drops.
// Missing functions defer to the wrapped host handlers.
package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultCallTimeout bounds a single script invocation.
const DefaultCallTimeout = 250 * time.Millisecond

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when calling a global that is not a function.
	ErrNotFunction = errors.New("not a function")
)

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes Go callers.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithCallTimeout sets the per-invocation timeout. Zero disables it.
func WithCallTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{timeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	return s
}

// openSafeLibraries opens base, table, string and math, then strips the
// base functions that load code from disk or strings. print is removed
// too; stdout belongs to the screen.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module", "print"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString executes a chunk of Lua source.
func (s *State) DoString(code string) error {
	return s.run(func() error { return s.L.DoString(code) })
}

// DoFile executes a Lua file. The file is read by the host, not the script.
func (s *State) DoFile(path string) error {
	return s.run(func() error { return s.L.DoFile(path) })
}

// HasFunction reports whether the global name is a function.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call invokes the global function fn and returns its results.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q: %w (got %s)", fn, ErrNotFunction, fnVal.Type())
	}

	top := s.L.GetTop()
	err := s.withDeadline(func() error {
		s.L.Push(fnVal)
		for _, arg := range args {
			s.L.Push(arg)
		}
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		return nil, err
	}

	n := s.L.GetTop() - top
	results := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		results = append(results, s.L.Get(top+i))
	}
	s.L.SetTop(top)
	return results, nil
}

// RegisterFunc installs a Go function as a Lua global.
func (s *State) RegisterFunc(name string, fn lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.NewFunction(fn))
}

// Close releases the Lua state. Closing twice is a no-op.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// IsClosed returns true after Close.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *State) run(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.withDeadline(fn)
}

// withDeadline runs fn under the call timeout with panic recovery.
func (s *State) withDeadline(fn func() error) (err error) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
