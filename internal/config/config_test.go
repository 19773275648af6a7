package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadNoPathReturnsDefaults(t *testing.T) {
	os.Unsetenv("GAME_CONFIG")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voxelcore.yaml")

	contents := `
region:
  chunk_edge: 16
  max_resident: 256
storage:
  badger_path: /tmp/voxelcore-data
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint32(16), cfg.Region.ChunkEdge)
	require.Equal(t, 256, cfg.Region.MaxResident)
	require.Equal(t, "/tmp/voxelcore-data", cfg.Storage.BadgerPath)
	// Fields absent from the file keep their defaults.
	require.Equal(t, uint32(2), cfg.Navigation.AgentClearance)
}
