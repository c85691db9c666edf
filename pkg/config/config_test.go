package config

import (
	"os"
	"path/filepath"
	"testing"

	"javelin/pkg/dberrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.DB.Memtable.Probability)
	assert.Equal(t, uint32(10_000), cfg.DB.Memtable.ExpectedNumKeys)
	assert.Equal(t, uint32(32), cfg.DB.Memtable.MaxLevels)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
logger:
  level: info
  json: true
db:
  memtable:
    probability: 0.25
    expected_num_keys: 1000
    max_levels: 3
    seed: 42
`))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Equal(t, MemtableConfig{
		Probability:     0.25,
		ExpectedNumKeys: 1000,
		MaxLevels:       3,
		Seed:            42,
		FlushQueueSize:  3,
	}, cfg.DB.Memtable)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "probability too high", yaml: "db:\n  memtable:\n    probability: 1\n"},
		{name: "zero max levels", yaml: "db:\n  memtable:\n    max_levels: 0\n"},
		{name: "negative queue", yaml: "db:\n  memtable:\n    flush_queue_size: -1\n"},
		{name: "unknown level", yaml: "logger:\n  level: trace\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, dberrors.ErrInvalidArgument)
		})
	}

	_, err := Parse([]byte("db: [unterminated"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  memtable:\n    seed: 7\n"), 0o600))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.DB.Memtable.Seed)
	assert.Equal(t, 0.5, cfg.DB.Memtable.Probability)
}
