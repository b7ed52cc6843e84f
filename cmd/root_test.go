package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiesman99/leptile/internal/testutil"
)

func TestRootCommand_TilesFolder(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "tiles")
	testutil.WriteFile(t, src, "bear.jpg", testutil.JPEG(t, 512, 384))

	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{src, "-o", out, "-s", "128"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})

	require.NoError(t, rootCmd.Execute())

	tiles, err := filepath.Glob(filepath.Join(out, "bear.jpg", "tiles", "*.jpg"))
	require.NoError(t, err)
	assert.Len(t, tiles, 12)
	assert.FileExists(t, filepath.Join(out, "bear.jpg", "bear.json"))
	assert.FileExists(t, filepath.Join(out, "bear.jpg", "bear.jpg"))
	assert.Contains(t, stderr.String(), "Processed 1, skipped 0, failed 0 of 1 files")
}

func TestRootCommand_ConflictingTargets(t *testing.T) {
	src := t.TempDir()
	file := testutil.WriteFile(t, src, "bear.jpg", testutil.JPEG(t, 32, 32))
	out := filepath.Join(t.TempDir(), "out")

	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetOut(&stderr)
	rootCmd.SetArgs([]string{"--file", file, src, "-o", out})
	t.Cleanup(func() {
		rootCmd.Flags().Set("file", "")
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetOut(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
	assert.NoDirExists(t, out, "nothing is processed when arguments are invalid")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var console bytes.Buffer

	log, closeLog, err := newLogger(&console, true, path)
	require.NoError(t, err)
	log.WithField("file", "bear.jpg").Debug("Saved tile")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Saved tile")
	assert.Contains(t, string(data), "file=bear.jpg")
	assert.Contains(t, console.String(), "Saved tile")
}

func TestNewLogger_InfoByDefault(t *testing.T) {
	var console bytes.Buffer
	log, _, err := newLogger(&console, false, "")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}
