package app

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/dshills/treedrop/internal/config"
	"github.com/dshills/treedrop/internal/config/watcher"
	"github.com/dshills/treedrop/internal/host"
	"github.com/dshills/treedrop/internal/logging"
	"github.com/dshills/treedrop/internal/policy"
	"github.com/dshills/treedrop/internal/tree"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      app.opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"tree", b.initTree},
		{"host", b.initHost},
		{"policy", b.initPolicy},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.opts.ConfigPath, b.opts.Config)
	if err != nil {
		return err
	}
	cfg = applyOverrides(cfg, b.opts)
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.app.config = cfg
	return nil
}

// applyOverrides lets command-line options win over file and environment.
func applyOverrides(cfg config.Config, opts Options) config.Config {
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.TreePath != "" {
		cfg.Host.Tree = opts.TreePath
	}
	if opts.PolicyPath != "" {
		cfg.Host.Policy = opts.PolicyPath
	}
	if opts.Copy {
		cfg.Host.Mode = host.ModeCopy.String()
	}
	return cfg
}

func (b *bootstrapper) initLogger() error {
	w, closer, err := openLog(b.app.config.Logging.File)
	if err != nil {
		return err
	}
	b.app.logFile = closer
	b.app.log = logging.NewLogger(b.app.config.LoggerConfig(w)).WithComponent("app")
	return nil
}

func (b *bootstrapper) initTree() error {
	path := b.app.config.Host.Tree
	if path == "" {
		b.app.forest = tree.Sample()
		return nil
	}
	f, err := tree.LoadFile(path)
	if err != nil {
		return err
	}
	b.app.forest = f
	b.app.log.Info("loaded %d nodes from %s", f.Count(), path)
	return nil
}

func (b *bootstrapper) initHost() error {
	mode, err := host.ParseMode(b.app.config.Host.Mode)
	if err != nil {
		return err
	}
	b.app.host = host.New(b.app.forest, host.WithMode(mode), host.WithLogger(b.app.log))
	b.app.drag = b.app.host
	b.app.drop = b.app.host
	return nil
}

func (b *bootstrapper) initPolicy() error {
	path := b.app.config.Host.Policy
	if path == "" {
		return nil
	}
	p, err := policy.LoadFile(path, b.app.host, b.app.host, policy.WithLogger(b.app.log))
	if err != nil {
		return err
	}
	b.app.policy = p
	b.app.drag = p
	b.app.drop = p
	return nil
}

// initWatcher watches the config file for live reload. A missing config
// directory only disables reloading.
func (b *bootstrapper) initWatcher() error {
	path := b.opts.ConfigPath
	if path == "" || b.opts.NoWatch {
		return nil
	}
	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, os.ErrNotExist) {
		b.app.log.Debug("config directory for %s missing, reload disabled", path)
		return nil
	}

	w, err := watcher.New(watcher.WithLogger(b.app.log))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return err
	}
	w.OnChange(b.app.configChanged)
	b.app.watcher = w
	return nil
}

// cleanup releases components in reverse init order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "watcher":
			if b.app.watcher != nil {
				_ = b.app.watcher.Stop()
				b.app.watcher = nil
			}
		case "policy":
			if b.app.policy != nil {
				_ = b.app.policy.Close()
				b.app.policy = nil
			}
		case "logger":
			if b.app.logFile != nil {
				_ = b.app.logFile.Close()
				b.app.logFile = nil
			}
			b.app.log = logging.NullLogger
		}
	}
}
