package app

import (
	"errors"

	"github.com/dshills/treedrop/internal/config"
	"github.com/dshills/treedrop/internal/config/watcher"
	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/host"
	"github.com/dshills/treedrop/internal/logging"
	"github.com/dshills/treedrop/internal/renderer/backend"
)

// Interrupt payloads posted to the backend queue.
type (
	quitSignal   struct{}
	reloadSignal struct {
		cfg config.Config
		err error
	}
)

// eventLoop draws and dispatches events until quit.
func (app *Application) eventLoop() error {
	for {
		app.view.Draw()
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventNone {
			// The screen was finalized.
			return nil
		}

		start := clock()
		err := app.handleBackendEvent(ev)
		app.metrics.RecordEvent(clock().Sub(start))

		if errors.Is(err, ErrQuit) || app.quit {
			return nil
		}
		if err != nil {
			app.log.Warn("event: %v", err)
		}
	}
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventInterrupt:
		if err := app.handleInterrupt(ev.Data); err != nil {
			return err
		}
		app.view.Handle(ev)
		return nil
	default:
		app.view.Handle(ev)
		return nil
	}
}

func (app *Application) handleKeyEvent(ev backend.Event) error {
	switch {
	case ev.Key == backend.KeyCtrlC, ev.Key == backend.KeyCtrlQ:
		return ErrQuit
	case ev.Key == backend.KeyCtrlL:
		app.view.Refresh()
		return nil
	case ev.Key == backend.KeyRune && ev.Mod == backend.ModNone:
		switch ev.Rune {
		case 'q':
			return ErrQuit
		case 'm':
			app.toggleMode()
			return nil
		}
	}
	app.view.Handle(ev)
	return nil
}

func (app *Application) toggleMode() {
	next := host.ModeCopy
	if app.host.Mode() == host.ModeCopy {
		next = host.ModeMove
	}
	app.host.SetMode(next)
	app.log.Info("mode %s", next)
	app.setStatus("mode: " + next.String())
}

// handleInterrupt applies work posted from other goroutines.
func (app *Application) handleInterrupt(data any) error {
	switch sig := data.(type) {
	case quitSignal:
		return ErrQuit
	case reloadSignal:
		app.applyReload(sig)
	}
	return nil
}

// interruptDuringDrag runs while the drag loop owns the queue. A quit is
// remembered and honored once the loop returns.
func (app *Application) interruptDuringDrag(data any) {
	if errors.Is(app.handleInterrupt(data), ErrQuit) {
		app.quit = true
	}
}

func (app *Application) dragEnded(effect dnd.Effect) {
	app.metrics.RecordDrag(effect)
	if app.pendingView != nil {
		app.view.Configure(*app.pendingView)
		app.pendingView = nil
	}
	if effect != dnd.EffectMove {
		app.setStatus("drop cancelled")
		return
	}
	if op, ok := app.host.LastOperation(); ok {
		app.setStatus(op.String())
	}
}

func (app *Application) setStatus(msg string) {
	if app.view == nil {
		return
	}
	app.view.SetStatus("[" + app.host.Mode().String() + "] " + msg)
}

// configChanged runs on the watcher goroutine. It reloads the file and
// hands the result to the event loop.
func (app *Application) configChanged(ev watcher.Event) {
	if ev.Op == watcher.OpRemove {
		app.log.Debug("config %s removed, keeping current settings", ev.Path)
		return
	}

	sig := reloadSignal{}
	cfg, err := config.Load(app.opts.ConfigPath, app.opts.Config)
	if err == nil {
		cfg = applyOverrides(cfg, app.opts)
		err = cfg.Validate()
	}
	if err != nil {
		sig.err = NewOperationError("reload", app.opts.ConfigPath, err).WithContext("keeping current settings")
	} else {
		sig.cfg = cfg
	}

	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b == nil || !app.running.Load() {
		return
	}
	if err := b.PostInterrupt(sig); err != nil {
		app.log.Warn("posting reload: %v", err)
	}
}

// applyReload installs a reloaded config. The controller and view defer it
// while a drag is live. Tree, policy and log file changes need a restart.
func (app *Application) applyReload(sig reloadSignal) {
	app.metrics.RecordReload(sig.err)
	if sig.err != nil {
		app.log.Warn("%v", sig.err)
		app.setStatus("config error, keeping current settings")
		return
	}

	cfg := sig.cfg
	if cfg.Host.Tree != app.config.Host.Tree || cfg.Host.Policy != app.config.Host.Policy ||
		cfg.Logging.File != app.config.Logging.File {
		app.log.Warn("tree, policy and log file changes apply after restart")
	}

	app.config = cfg
	app.ctrl.Configure(cfg.Dnd())
	if vc := viewConfig(cfg); app.view.Dragging() {
		app.pendingView = &vc
	} else {
		app.view.Configure(vc)
	}
	app.log.SetLevel(logging.ParseLogLevel(cfg.Logging.Level))
	if mode, err := host.ParseMode(cfg.Host.Mode); err == nil {
		app.host.SetMode(mode)
	}
	app.log.Info("config reloaded")
	app.setStatus("config reloaded")
}
