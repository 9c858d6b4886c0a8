package utils

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"github.com/voxelsplace/voxtree/api"
	"github.com/voxelsplace/voxtree/internal/config"
	"github.com/voxelsplace/voxtree/mesh"
	"github.com/voxelsplace/voxtree/scene"
	"github.com/voxelsplace/voxtree/voxel"
)

// TreeExt is the extension of stored voxel trees.
const TreeExt = ".vxt"

const mb = 1024 * 1024

// RunMesh2Tree voxelizes an .obj, .gltf or .glb file and writes the
// compressed tree to outPath.
func RunMesh2Tree(inPath, outPath string, cfg *config.Config) error {
	start := time.Now()
	err := mesh2Tree(inPath, outPath, cfg, start)
	if err != nil {
		instrumentConversionError("mesh", err)
	}
	return err
}

func mesh2Tree(inPath, outPath string, cfg *config.Config, start time.Time) error {
	opts, err := cfg.APIOptions()
	if err != nil {
		return err
	}
	m, err := mesh.Load(inPath)
	if err != nil {
		return err
	}
	vm, err := mesh.Voxelize(m, opts.Mesh)
	if err != nil {
		return errors.New("voxelizing mesh failed").
			WithType(errors.Type(err)).
			WithTag("path", inPath).
			Wrap(err)
	}
	logs.WithTag("path", inPath).
		WithTag("triangles", len(m.Triangles)).
		WithTag("resolution", opts.Mesh.Resolution).
		WithTag("bricks", vm.Len()).
		WithTag("duration", time.Since(start).String()).
		Debug("mesh voxelized")

	return storeTree(vm, inPath, outPath, "mesh", opts, start)
}

// RunVox2Tree bakes a .vox scene and writes the compressed tree to outPath.
func RunVox2Tree(inPath, outPath string, cfg *config.Config) error {
	start := time.Now()
	err := vox2Tree(inPath, outPath, cfg, start)
	if err != nil {
		instrumentConversionError("vox", err)
	}
	return err
}

func vox2Tree(inPath, outPath string, cfg *config.Config, start time.Time) error {
	f, err := scene.Load(inPath)
	if err != nil {
		return err
	}
	vm, err := scene.Voxelize(f)
	if err != nil {
		return errors.New("voxelizing scene failed").
			WithType(errors.Type(err)).
			WithTag("path", inPath).
			Wrap(err)
	}
	logs.WithTag("path", inPath).
		WithTag("models", len(f.Models)).
		WithTag("nodes", len(f.Nodes)).
		WithTag("bricks", vm.Len()).
		WithTag("duration", time.Since(start).String()).
		Debug("scene voxelized")

	opts, err := cfg.APIOptions()
	if err != nil {
		return err
	}
	return storeTree(vm, inPath, outPath, "vox", opts, start)
}

// RunConvert picks the converter from the input extension.
func RunConvert(inPath, outPath string, cfg *config.Config) error {
	ext := strings.ToLower(filepath.Ext(inPath))
	switch {
	case ext == ".vox":
		return RunVox2Tree(inPath, outPath, cfg)
	case mesh.Supported(ext):
		return RunMesh2Tree(inPath, outPath, cfg)
	default:
		return errors.New("unsupported asset").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("path", inPath)
	}
}

// Supported reports whether RunConvert handles the file.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".vox" || mesh.Supported(ext)
}

// TreePath returns the output path for an asset inside outDir.
func TreePath(inPath, outDir string) string {
	base := filepath.Base(inPath)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+TreeExt)
}

func storeTree(vm *voxel.Map, inPath, outPath, format string, opts api.Options, start time.Time) error {
	tree, stats, err := api.CompileMap(vm, opts)
	if err != nil {
		return errors.New("compiling tree failed").
			WithType(errors.Type(err)).
			WithTag("path", inPath).
			Wrap(err)
	}

	data, err := voxel.MarshalTree(tree, opts.Compression)
	if err != nil {
		return errors.New("encoding tree failed").
			WithTag("path", inPath).
			Wrap(err)
	}
	if err := writeFile(outPath, data); err != nil {
		return err
	}

	instrumentConversion(format, start, len(data))
	nodeBytes, leafBytes := tree.Sizes()
	logs.WithTag("path", inPath).
		WithTag("output", outPath).
		WithTag("exp", tree.Exp).
		WithTag("voxels", api.Info(tree).Voxels).
		WithTag("node_mb", float64(nodeBytes)/mb).
		WithTag("leaf_mb", float64(leafBytes)/mb).
		WithTag("total_mb", float64(nodeBytes+leafBytes)/mb).
		WithTag("saved_mb", float64(stats.SavedBytes)/mb).
		WithTag("stored_mb", float64(len(data))/mb).
		WithTag("pruned", stats.Pruned).
		WithTag("duration", time.Since(start).String()).
		Info("tree written")
	return nil
}
