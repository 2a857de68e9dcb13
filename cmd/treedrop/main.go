// Package main is the entry point for treedrop, a terminal tree editor
// driven by drag and drop.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/treedrop/internal/app"
	"github.com/dshills/treedrop/internal/config"
	"github.com/dshills/treedrop/internal/renderer/backend"
	"github.com/dshills/treedrop/internal/tree"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr, startUI)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// startFunc runs the interactive application.
type startFunc func(opts app.Options) error

func newRootCommand(stdout, stderr io.Writer, start startFunc) *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "treedrop",
		Short: "Rearrange a tree with the mouse",
		Long: `treedrop shows a tree in the terminal and lets you rearrange it by
dragging rows. Drop onto a row to make the dragged rows its children, or
near a row's top or bottom edge to insert them before or after it.`,
		Example: `
treedrop
treedrop -t projects.yaml -p policy.lua
treedrop --copy --log-level debug -c ./treedrop.toml
`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = resolveConfigPath(opts.ConfigPath)
			return start(opts)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $"+config.EnvPrefix+"CONFIG or "+config.DefaultPath()+")")
	flags.StringVarP(&opts.TreePath, "tree", "t", "", "YAML tree file (default: built-in sample)")
	flags.StringVarP(&opts.PolicyPath, "policy", "p", "", "Lua policy script")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&opts.Copy, "copy", false, "copy dragged nodes instead of moving them")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "do not reload the config file when it changes")

	addConfig(cmd, &opts)
	addSample(cmd)
	return cmd
}

// resolveConfigPath applies the $TREEDROP_CONFIG and default fallbacks.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(config.EnvPrefix + "CONFIG"); env != "" {
		return env
	}
	return config.DefaultPath()
}

func addConfig(topLevel *cobra.Command, opts *app.Options) {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as TOML",
		Example: `
treedrop config
treedrop config --default > ~/.config/treedrop/treedrop.toml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				var err error
				cfg, err = config.Load(resolveConfigPath(opts.ConfigPath), config.Options{})
				if err != nil {
					return err
				}
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&defaults, "default", false, "print the built-in defaults")
	topLevel.AddCommand(cmd)
}

func addSample(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "print the built-in sample tree as YAML",
		Example: `
treedrop sample > tree.yaml
treedrop -t tree.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tree.Save(cmd.OutOrStdout(), tree.Sample())
		},
	}
	topLevel.AddCommand(cmd)
}

// startUI runs the application on the controlling terminal until quit or
// a termination signal.
func startUI(opts app.Options) error {
	application, err := app.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Shutdown()

	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	if err := application.SetBackend(term); err != nil {
		return fmt.Errorf("failed to set backend: %w", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		application.Shutdown()
	}()

	return application.Run()
}
