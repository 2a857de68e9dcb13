// Package app wires treedrop's components together and runs the terminal
// event loop.
//
// Components start in dependency order: config, logger, tree, host, policy
// and config watcher in New; the tree view and drag-and-drop controller in
// Run, once the backend is up. All widget and controller calls happen on
// the goroutine that calls Run. Work from other goroutines, such as config
// reloads, reaches it as backend interrupts.
package app

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/treedrop/internal/config"
	"github.com/dshills/treedrop/internal/config/watcher"
	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/host"
	"github.com/dshills/treedrop/internal/logging"
	"github.com/dshills/treedrop/internal/policy"
	"github.com/dshills/treedrop/internal/renderer/backend"
	"github.com/dshills/treedrop/internal/tree"
	"github.com/dshills/treedrop/internal/treeview"
)

// Options configures the application. Non-empty fields override the
// config file and environment.
type Options struct {
	// ConfigPath is the TOML config file. Empty runs on defaults and the
	// environment.
	ConfigPath string

	// TreePath is a YAML tree file. Empty uses host.tree or the sample tree.
	TreePath string

	// PolicyPath is a Lua policy script.
	PolicyPath string

	// LogLevel overrides logging.level.
	LogLevel string

	// Copy starts in copy mode.
	Copy bool

	// NoWatch disables config live reload.
	NoWatch bool

	// Config controls how the config file and environment are read.
	Config config.Options
}

// Application owns every component for one run.
type Application struct {
	mu sync.Mutex

	opts    Options
	config  config.Config
	log     *logging.Logger
	logFile io.Closer
	metrics *Metrics

	// Host side
	forest *tree.Forest
	host   *host.Host
	policy *policy.Policy
	drag   dnd.DragHandler
	drop   dnd.DropHandler

	// Platform side, created by Run
	backend backend.Backend
	view    *treeview.View
	ctrl    *dnd.Controller

	// pendingView is a layout received during a drag.
	pendingView *treeview.Config

	watcher *watcher.Watcher

	running  atomic.Bool
	ready    chan struct{}
	quit     bool
	released bool
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		log:     logging.NullLogger,
		metrics: NewMetrics(),
		ready:   make(chan struct{}),
	}

	b := newBootstrapper(app)
	if err := b.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run initializes the backend and processes events until a quit key,
// Shutdown, or the screen closing. It releases every resource on return.
func (app *Application) Run() error {
	app.mu.Lock()
	if app.released {
		app.mu.Unlock()
		return ErrShutDown
	}
	b := app.backend
	app.mu.Unlock()

	if b == nil {
		return &InitError{Component: "backend", Err: errors.New("no backend set")}
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer app.release()

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	app.attach(b)
	if app.watcher != nil {
		app.watcher.Start()
	}
	close(app.ready)

	app.log.Info("running with %d nodes in %s mode", app.forest.Count(), app.host.Mode())
	err := app.eventLoop()
	app.log.Info("session: %s", app.metrics.Snapshot())
	return err
}

// attach creates the tree view and controller on b.
func (app *Application) attach(b backend.Backend) {
	app.view = treeview.New(b, app.forest,
		treeview.WithConfig(viewConfig(app.config)),
		treeview.WithLogger(app.log),
	)
	app.ctrl = dnd.New(app.view,
		dnd.WithDragHandler(app.drag),
		dnd.WithDropHandler(app.drop),
		dnd.WithConfig(app.config.Dnd()),
		dnd.WithLogger(app.log),
	)
	app.view.SetPointerHandler(app.ctrl)
	app.view.SetInterruptHandler(app.interruptDuringDrag)
	app.view.SetDragEndHandler(app.dragEnded)
	app.view.SetTitle(title(app.config))
	app.setStatus("ready")
}

// Ready is closed once Run has created the view and is about to process
// events.
func (app *Application) Ready() <-chan struct{} {
	return app.ready
}

// Shutdown stops a running event loop, or releases resources when the
// application never ran. It is safe to call more than once and from any
// goroutine.
func (app *Application) Shutdown() {
	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()

	if app.running.Load() && b != nil {
		if err := b.PostInterrupt(quitSignal{}); err != nil {
			app.log.Warn("posting quit: %v", err)
		}
		return
	}
	app.release()
}

// release stops background work and closes files in reverse start order.
func (app *Application) release() {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.released {
		return
	}
	app.released = true

	var errs ErrorList
	if app.watcher != nil {
		errs.Add(app.watcher.Stop())
	}
	if app.policy != nil {
		errs.Add(app.policy.Close())
	}
	if err := errs.AsError(); err != nil {
		app.log.Warn("shutdown: %v", err)
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the active configuration.
func (app *Application) Config() config.Config {
	return app.config
}

// Forest returns the tree being edited.
func (app *Application) Forest() *tree.Forest {
	return app.forest
}

// Host returns the sample host.
func (app *Application) Host() *host.Host {
	return app.host
}

// Policy returns the script policy, or nil when none is loaded.
func (app *Application) Policy() *policy.Policy {
	return app.policy
}

// DragHandler returns the handler the controller consults for drags.
func (app *Application) DragHandler() dnd.DragHandler {
	return app.drag
}

// DropHandler returns the handler the controller consults for drops.
func (app *Application) DropHandler() dnd.DropHandler {
	return app.drop
}

// View returns the tree view, or nil before Run.
func (app *Application) View() *treeview.View {
	return app.view
}

// Controller returns the drag-and-drop controller, or nil before Run.
func (app *Application) Controller() *dnd.Controller {
	return app.ctrl
}

// Metrics returns the session metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// viewConfig derives the widget layout. The gutters cover the autoscroll
// border.
func viewConfig(cfg config.Config) treeview.Config {
	vc := treeview.DefaultConfig()
	vc.UnitsPerCell = cfg.View.UnitsPerCell
	vc.RowHeight = cfg.View.RowHeight
	vc.Indent = cfg.View.Indent
	vc.ShowStatus = cfg.View.ShowStatus
	vc.Gutter = treeview.GutterFor(float64(cfg.Autoscroll.Border), cfg.View.UnitsPerCell)
	return vc
}

func title(cfg config.Config) string {
	if cfg.Host.Tree == "" {
		return "treedrop: sample"
	}
	return "treedrop: " + cfg.Host.Tree
}

// openLog opens the log file for appending. An empty path discards logs.
func openLog(path string) (io.Writer, io.Closer, error) {
	if path == "" {
		return io.Discard, nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// clock is replaced in tests.
var clock = time.Now
