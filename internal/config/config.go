// Package config loads the voxtree YAML configuration.
package config

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/voxtree/api"
	"github.com/voxelsplace/voxtree/mesh"
	"github.com/voxelsplace/voxtree/voxel"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "VOXTREE_CONFIG"

type Config struct {
	LogLevel    string      `yaml:"log_level"`
	LogIndent   bool        `yaml:"log_indent"`
	Workers     int         `yaml:"workers"`
	MetricsAddr string      `yaml:"metrics_addr"`
	Tree        TreeConfig  `yaml:"tree"`
	Mesh        MeshConfig  `yaml:"mesh"`
	Codec       CodecConfig `yaml:"codec"`
}

type TreeConfig struct {
	Exp       uint32 `yaml:"exp"`
	LeafDedup bool   `yaml:"leaf_dedup"`
}

type MeshConfig struct {
	Resolution     uint32 `yaml:"resolution"`
	Axes           string `yaml:"axes"`
	ExhaustiveScan bool   `yaml:"exhaustive_scan"`
}

type CodecConfig struct {
	Compression string `yaml:"compression"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Workers:  4,
		Tree: TreeConfig{
			Exp: 12,
		},
		Mesh: MeshConfig{
			Resolution: mesh.DefaultResolution,
			Axes:       mesh.DefaultAxes.String(),
		},
		Codec: CodecConfig{
			Compression: voxel.CompZstd.String(),
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("reading config failed").
			WithTag("path", path).
			Wrap(err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.New("parsing config failed").
			WithTag("path", path).
			Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv loads the file named by VOXTREE_CONFIG, or the defaults when the
// variable is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		cfg := Default()
		return &cfg, nil
	}
	return Load(path)
}

// Validate fills zero values with defaults and rejects invalid settings.
func (c *Config) Validate() error {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.Tree.Exp == 0 {
		c.Tree.Exp = def.Tree.Exp
	}
	if c.Tree.Exp%2 != 0 || c.Tree.Exp < 2 || c.Tree.Exp > voxel.MaxExp {
		return errors.New("tree.exp must be even and between 2 and 30").
			WithTag("exp", c.Tree.Exp)
	}
	if c.Mesh.Resolution == 0 {
		c.Mesh.Resolution = def.Mesh.Resolution
	}
	if uint64(c.Mesh.Resolution) > uint64(1)<<c.Tree.Exp {
		return errors.New("mesh.resolution does not fit in the tree").
			WithTag("resolution", c.Mesh.Resolution).
			WithTag("exp", c.Tree.Exp)
	}
	if c.Mesh.Axes == "" {
		c.Mesh.Axes = def.Mesh.Axes
	}
	if _, err := mesh.ParseAxisMap(c.Mesh.Axes); err != nil {
		return errors.New("mesh.axes invalid").Wrap(err)
	}
	if c.Codec.Compression == "" {
		c.Codec.Compression = def.Codec.Compression
	}
	if _, err := voxel.ParseCompression(c.Codec.Compression); err != nil {
		return errors.New("codec.compression invalid").Wrap(err)
	}
	return nil
}

// MeshOptions returns the voxelizer settings.
func (c *Config) MeshOptions() (mesh.Options, error) {
	axes, err := mesh.ParseAxisMap(c.Mesh.Axes)
	if err != nil {
		return mesh.Options{}, err
	}
	return mesh.Options{
		Resolution:     c.Mesh.Resolution,
		Axes:           axes,
		ExhaustiveScan: c.Mesh.ExhaustiveScan,
	}, nil
}

// APIOptions returns the conversion settings shared by every runner.
func (c *Config) APIOptions() (api.Options, error) {
	m, err := c.MeshOptions()
	if err != nil {
		return api.Options{}, err
	}
	return api.Options{
		Exp:         c.Tree.Exp,
		Mesh:        m,
		LeafDedup:   c.Tree.LeafDedup,
		Compression: c.Compression(),
	}, nil
}

// Compression returns the storage codec.
func (c *Config) Compression() voxel.Compression {
	comp, err := voxel.ParseCompression(c.Codec.Compression)
	if err != nil {
		return voxel.CompZstd
	}
	return comp
}
