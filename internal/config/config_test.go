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
	cfg.DefaultValue = "Unassigned"
	cfg.RunLog = "logs/runs.csv"

	path := filepath.Join(t.TempDir(), "put-ou-cost-category.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.OrgRegion, got.OrgRegion)
	assert.Equal(t, cfg.CostExplorerRegion, got.CostExplorerRegion)
	assert.Equal(t, "Unassigned", got.DefaultValue)
	assert.Equal(t, "logs/runs.csv", got.RunLog)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.OrgRegion)
	assert.Equal(t, "us-east-1", cfg.CostExplorerRegion)
	assert.Empty(t, cfg.DefaultValue)
	assert.Empty(t, cfg.RunLog)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run_log: runs.csv\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", got.CostExplorerRegion)
	assert.Equal(t, "runs.csv", got.RunLog)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t not yaml ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
