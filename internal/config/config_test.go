package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxtree/api"
	"github.com/voxelsplace/voxtree/mesh"
	"github.com/voxelsplace/voxtree/voxel"
)

func TestValidateAppliesDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())
	require.Equal(t, Default(), cfg)

	opts, err := cfg.MeshOptions()
	require.NoError(t, err)
	require.Equal(t, mesh.DefaultOptions(), opts)
	require.Equal(t, voxel.CompZstd, cfg.Compression())

	apiOpts, err := cfg.APIOptions()
	require.NoError(t, err)
	require.Equal(t, api.DefaultOptions(), apiOpts)
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	tests := map[string]func(*Config){
		"odd exp":                func(c *Config) { c.Tree.Exp = 11 },
		"exp too large":          func(c *Config) { c.Tree.Exp = 32 },
		"resolution beyond root": func(c *Config) { c.Tree.Exp = 10; c.Mesh.Resolution = 2048 },
		"bad axes":               func(c *Config) { c.Mesh.Axes = "x,x,z" },
		"bad compression":        func(c *Config) { c.Codec.Compression = "brotli" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadReadsYAMLAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxtree.yaml")
	data := `
log_level: debug
workers: 2
tree:
  exp: 14
  leaf_dedup: true
mesh:
  resolution: 1024
  axes: "x,y,z"
codec:
  compression: best
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, uint32(14), cfg.Tree.Exp)
	require.True(t, cfg.Tree.LeafDedup)
	require.Equal(t, voxel.CompBest, cfg.Compression())

	opts, err := cfg.MeshOptions()
	require.NoError(t, err)
	require.Equal(t, uint32(1024), opts.Resolution)
	require.Equal(t, mesh.IdentityAxes, opts.Axes)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tree: [1, 2"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, Default(), *cfg)

	path := filepath.Join(t.TempDir(), "voxtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 9\n"), 0o644))
	t.Setenv(EnvPath, path)
	cfg, err = FromEnv()
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Workers)
	require.Equal(t, uint32(12), cfg.Tree.Exp)
}
