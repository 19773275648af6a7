// Package config loads voxelcore's runtime configuration from a YAML
// file, falling back to defaults when no file is given.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration struct for a voxelcore deployment.
type Config struct {
	Region     RegionConfig     `yaml:"region"`
	Navigation NavigationConfig `yaml:"navigation"`
	Storage    StorageConfig    `yaml:"storage"`
}

// RegionConfig controls the chunk extent and residency policy a
// region.Manager is built with.
type RegionConfig struct {
	ChunkEdge      uint32 `yaml:"chunk_edge"`
	MaxResident    int    `yaml:"max_resident"`
	AutoTuneMemory bool   `yaml:"auto_tune_memory"`
}

// NavigationConfig controls pathfinding cost parameters.
type NavigationConfig struct {
	AgentClearance  uint32  `yaml:"agent_clearance"`
	MaxStepHeight   uint32  `yaml:"max_step_height"`
	DiagonalCost    float64 `yaml:"diagonal_cost"`
	VerticalCost    float64 `yaml:"vertical_cost"`
}

// StorageConfig selects which persistence backend(s) a deployment wires
// up. Multiple backends may be non-empty: e.g. Badger for local chunk
// persistence alongside NATS for cross-node dirty fanout.
type StorageConfig struct {
	BadgerPath    string `yaml:"badger_path"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	RedisURL      string `yaml:"redis_url"`
	NATSURL       string `yaml:"nats_url"`
	MaterialDSN   string `yaml:"material_dsn"`
}

// DefaultConfig returns the configuration voxeldemo runs with when no
// config file is supplied.
func DefaultConfig() Config {
	return Config{
		Region: RegionConfig{
			ChunkEdge:   32,
			MaxResident: 512,
		},
		Navigation: NavigationConfig{
			AgentClearance: 2,
			MaxStepHeight:  1,
			DiagonalCost:   1.41421356,
			VerticalCost:   1.0,
		},
	}
}

// Load reads a YAML config file at path. An empty path falls back to
// the GAME_CONFIG environment variable; if neither is set, Load returns
// DefaultConfig with no error.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
