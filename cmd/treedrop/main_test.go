package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/treedrop/internal/app"
)

func execute(t *testing.T, start startFunc, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out, &out, start)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootFlags(t *testing.T) {
	var got app.Options
	start := func(opts app.Options) error {
		got = opts
		return nil
	}

	_, err := execute(t, start, "-c", "c.toml", "-t", "tree.yaml", "-p", "p.lua",
		"--log-level", "debug", "--copy", "--no-watch")
	require.NoError(t, err)

	assert.Equal(t, app.Options{
		ConfigPath: "c.toml",
		TreePath:   "tree.yaml",
		PolicyPath: "p.lua",
		LogLevel:   "debug",
		Copy:       true,
		NoWatch:    true,
	}, got)
}

func TestConfigPathFallbacks(t *testing.T) {
	t.Setenv("TREEDROP_CONFIG", "/etc/treedrop.toml")
	assert.Equal(t, "x.toml", resolveConfigPath("x.toml"))
	assert.Equal(t, "/etc/treedrop.toml", resolveConfigPath(""))

	t.Setenv("TREEDROP_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/home/u/.config")
	assert.Equal(t, filepath.Join("/home/u/.config", "treedrop", "treedrop.toml"), resolveConfigPath(""))
}

func TestStartError(t *testing.T) {
	boom := errors.New("boom")
	_, err := execute(t, func(app.Options) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunExitCodes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"--version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "dev")

	stdout.Reset()
	assert.Equal(t, 1, run([]string{"--bogus"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Error:")

	stderr.Reset()
	assert.Equal(t, 1, run([]string{"extra-arg"}, &stdout, &stderr))
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, nil, "config", "--default")
	require.NoError(t, err)
	assert.Contains(t, out, "insertMargin = 5")
	assert.Contains(t, out, "[autoscroll]")

	t.Setenv("TREEDROP_MODE", "copy")
	out, err = execute(t, nil, "-c", filepath.Join(t.TempDir(), "none.toml"), "config")
	require.NoError(t, err)
	assert.Contains(t, out, "mode = 'copy'")
}

func TestSampleCommand(t *testing.T) {
	out, err := execute(t, nil, "sample")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Inbox")
	assert.Contains(t, out, "nodes:")
}
