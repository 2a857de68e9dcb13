// Package watcher reports changes to configuration files so they can be
// reloaded while treedrop runs.
//
// Files are watched through their parent directory, so editors that save by
// writing a temporary file and renaming it over the original are seen as a
// single change. Bursts of events for one file are coalesced and delivered
// once the file has been quiet for the debounce interval.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/treedrop/internal/logging"
)

// ErrClosed is returned when the watcher has been stopped.
var ErrClosed = errors.New("watcher closed")

// Operation is the kind of change observed.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota
	// OpCreate indicates the file appeared.
	OpCreate
	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is a coalesced change to one watched file.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Handler receives change events on the watcher goroutine.
type Handler func(Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before its event fires.
// Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for watch errors.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l.WithComponent("watcher")
		}
	}
}

type pending struct {
	op    Operation
	timer *time.Timer
}

// Watcher watches configuration files for changes.
type Watcher struct {
	mu       sync.Mutex
	fs       *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	handlers []Handler
	pending  map[string]*pending
	debounce time.Duration
	log      *logging.Logger

	running bool
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher. Call Start to begin delivering events.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]*pending),
		debounce: 100 * time.Millisecond,
		log:      logging.NullLogger,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds a file. The file need not exist yet but its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.files[abs] {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Unwatch removes a file.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if err := w.fs.Remove(dir); err != nil {
			return fmt.Errorf("unwatching %s: %w", dir, err)
		}
	}
	return nil
}

// WatchedFiles returns the watched file paths.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

// OnChange registers a handler.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start begins delivering events. It is a no-op if already running.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.closed {
		return
	}
	w.running = true
	w.wg.Add(1)
	go w.loop()
}

// IsRunning reports whether events are being delivered.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stop stops the watcher and releases its resources. Pending debounced
// events are dropped. Stop is idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.running = false
	close(w.done)
	for p, ev := range w.pending {
		ev.timer.Stop()
		delete(w.pending, p)
	}
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	if !w.files[path] || w.closed {
		w.mu.Unlock()
		return
	}
	if w.debounce == 0 {
		w.mu.Unlock()
		w.emit(Event{Path: path, Op: op, Time: time.Now()})
		return
	}

	if p, exists := w.pending[path]; exists {
		p.op = coalesce(p.op, op)
		p.timer.Reset(w.debounce)
		w.mu.Unlock()
		return
	}
	p := &pending{op: op}
	p.timer = time.AfterFunc(w.debounce, func() { w.flush(path) })
	w.pending[path] = p
	w.mu.Unlock()
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	w.emit(Event{Path: path, Op: p.op, Time: time.Now()})
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		w.call(h, ev)
	}
}

func (w *Watcher) call(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("config watch handler panicked", "path", ev.Path, "panic", r)
		}
	}()
	h(ev)
}

func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpRemove, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// coalesce merges a new operation into a pending one. A file that reappears
// after removal is reported as created; otherwise the most significant
// change wins.
func coalesce(prev, next Operation) Operation {
	switch {
	case prev == OpRemove && next != OpRemove:
		return OpCreate
	case next == OpRemove:
		return OpRemove
	case prev == OpCreate:
		return OpCreate
	default:
		return next
	}
}
