package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
policy = "ARC"
capacity = 512
threshold = 3
duration = "1500ms"
reads = 95
scan_every = 1000
`)
	w, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "arc", w.Policy)
	assert.Equal(t, 512, w.Capacity)
	assert.Equal(t, 3, w.Threshold)
	assert.Equal(t, 1500*time.Millisecond, w.Duration.Duration)
	assert.Equal(t, 95, w.Reads)
	assert.Equal(t, 1000, w.ScanEvery)

	def := Default()
	assert.Equal(t, def.Keys, w.Keys, "unset keys keep defaults")
	assert.Equal(t, def.ZipfS, w.ZipfS)
	assert.Equal(t, def.ScanLength, w.ScanLength)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown policy": `policy = "fifo"`,
		"reads range":    `reads = 101`,
		"zipf skew":      `zipf_s = 1.0`,
		"unknown key":    `capacty = 10`,
		"negative rate":  `rate = -1.0`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeFile(t, body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_DecodeAndIOErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, `duration = "soon"`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}
