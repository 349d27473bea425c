package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Pairs = append(cfg.Pairs, Pair{
		Name:      "chase",
		Budget:    Source{Type: "ynab", Path: "/data/ynab.csv"},
		Statement: Source{Type: "chase", Path: "/data/chase.csv"},
	})
	cfg.Splits = SplitsConfig{Pattern: `Split \((\d+)/(\d+)\)`, Strict: true}
	cfg.History.Path = "history.csv"

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	require.Len(t, got.Pairs, 2)
	assert.Equal(t, "checking", got.Pairs[0].Name)
	assert.Equal(t, "ynab", got.Pairs[0].Budget.Type)
	assert.Equal(t, filepath.Join(dir, "ynab.csv"), got.Pairs[0].Budget.Path)
	assert.Equal(t, filepath.Join(dir, "citi.csv"), got.Pairs[0].Statement.Path)
	assert.Equal(t, "/data/chase.csv", got.Pairs[1].Statement.Path)
	assert.Equal(t, cfg.Splits, got.Splits)
	assert.Equal(t, "info", got.Logging.Level)
	assert.Equal(t, filepath.Join(dir, "history.csv"), got.History.Path)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	require.Len(t, cfg.Pairs, 1)
	assert.Equal(t, "ynab", cfg.Pairs[0].Budget.Type)
	assert.Equal(t, "citi", cfg.Pairs[0].Statement.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Splits.Pattern)
	assert.False(t, cfg.Splits.Strict)
	assert.Empty(t, cfg.History.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("pairs: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, Default())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: checking")
	assert.Contains(t, contents, "type: ynab")
	assert.Contains(t, contents, "strict: false")
	assert.Contains(t, contents, "level: info")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"no pairs", Config{}, "no pairs"},
		{"missing name", Config{Pairs: []Pair{{
			Budget:    Source{Type: "ynab", Path: "a"},
			Statement: Source{Type: "citi", Path: "b"},
		}}}, "missing name"},
		{"duplicate", Config{Pairs: []Pair{
			{Name: "x", Budget: Source{Type: "ynab", Path: "a"}, Statement: Source{Type: "citi", Path: "b"}},
			{Name: "x", Budget: Source{Type: "ynab", Path: "a"}, Statement: Source{Type: "citi", Path: "b"}},
		}}, "duplicate"},
		{"missing statement path", Config{Pairs: []Pair{
			{Name: "x", Budget: Source{Type: "ynab", Path: "a"}, Statement: Source{Type: "citi"}},
		}}, "statement needs type and path"},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), tt.wantErr, tt.name)
	}
}
