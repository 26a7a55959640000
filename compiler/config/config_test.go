package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcc/xronos-sub001/compiler/df"
)

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[fixpoint]
max_sweeps = 8
backward = false

[log]
verbosity = "prop,sweep"
`)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Fixpoint.MaxSweeps)
	assert.False(t, cfg.Fixpoint.Backward)
	assert.Equal(t, "prop,sweep", cfg.Log.Verbosity)

	assert.True(t, cfg.Finalize.Enabled, "default kept")
	assert.True(t, cfg.Report.Widths, "default kept")

	assert.Equal(t, df.Options{MaxSweeps: 8}, cfg.Options())
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse(`
[fixpoint]
max_sweep = 8
`)
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.ErrorContains(t, err, "fixpoint.max_sweep")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xronos.toml")

	err := os.WriteFile(path, []byte("[finalize]\nenabled = false\n[report]\nsweeps = true\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Finalize.Enabled)
	assert.True(t, cfg.Report.Sweeps)
	assert.Equal(t, df.DefaultMaxSweeps, cfg.Fixpoint.MaxSweeps)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
