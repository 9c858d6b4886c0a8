package utils

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/voxtree/api"
	"github.com/voxelsplace/voxtree/voxel"
)

// RunTreeInfo loads and validates a stored tree, then logs its summary.
func RunTreeInfo(path string) (api.TreeInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.TreeInfo{}, errors.New("reading tree failed").
			WithTag("path", path).
			Wrap(err)
	}
	// decoding validates the node and leaf arrays
	_, info, err := api.DecodeTree(data)
	if err != nil {
		return api.TreeInfo{}, err
	}

	logs.WithTag("path", path).
		WithTag("exp", info.Exp).
		WithTag("side", info.Side).
		WithTag("nodes", info.Nodes).
		WithTag("leaf_nodes", info.LeafNodes).
		WithTag("voxels", info.Voxels).
		WithTag("node_mb", float64(info.NodeBytes)/mb).
		WithTag("leaf_mb", float64(info.LeafBytes)/mb).
		WithTag("compression", info.Compression).
		WithTag("stored_mb", float64(info.StoredBytes)/mb).
		Info("tree info")
	return info, nil
}

// RunTree2GLB expands a stored tree and writes a greedy meshed .glb.
func RunTree2GLB(inPath, outPath string) error {
	t, err := voxel.LoadTree(inPath)
	if err != nil {
		return err
	}
	doc := api.GLBDocument(t)
	if len(doc.Meshes) == 0 {
		logs.Warn(errors.New("tree holds no voxels, writing an empty scene").
			WithTag("path", inPath))
	}
	if err := gltf.SaveBinary(doc, outPath); err != nil {
		return errors.New("writing glb failed").
			WithTag("path", outPath).
			Wrap(err)
	}
	logs.WithTag("path", inPath).
		WithTag("output", outPath).
		Info("glb written")
	return nil
}
