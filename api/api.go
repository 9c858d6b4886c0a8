package api

import (
	"bytes"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxtree/mesh"
	"github.com/voxelsplace/voxtree/scene"
	"github.com/voxelsplace/voxtree/voxel"
)

// Options configures the in-memory conversions.
type Options struct {
	// Exp is the root exponent. 0 picks the smallest one holding the map.
	Exp         uint32
	Mesh        mesh.Options
	LeafDedup   bool
	Compression voxel.Compression
}

// DefaultOptions mirrors the defaults of the command line tool.
func DefaultOptions() Options {
	return Options{
		Exp:         12,
		Mesh:        mesh.DefaultOptions(),
		Compression: voxel.CompZstd,
	}
}

// CompileMap drops emptied bricks, shifts the map to positive coordinates and
// compiles it. A map that does not fit in the requested root cube is a
// precondition error.
func CompileMap(m *voxel.Map, opts Options) (*voxel.Tree, voxel.Stats, error) {
	m.Prune()
	m.ShiftToPositive()
	need := m.RequiredExp()
	exp := opts.Exp
	if exp == 0 {
		exp = need
	}
	if exp%2 != 0 || exp < 2 || exp > voxel.MaxExp {
		return nil, voxel.Stats{}, errors.New("invalid tree exponent").
			WithType(voxel.ErrTypePrecondition).
			WithTag("exp", exp)
	}
	if need > exp {
		return nil, voxel.Stats{}, errors.New("map does not fit in the root cube").
			WithType(voxel.ErrTypePrecondition).
			WithTag("exp", exp).
			WithTag("required_exp", need)
	}

	var copts []voxel.CompileOption
	if opts.LeafDedup {
		copts = append(copts, voxel.WithLeafDedup())
	}
	c := voxel.NewCompiler(m, copts...)
	t := c.Compile(exp)
	return t, c.Stats(), nil
}

// MeshToTree voxelizes an in-memory mesh ("obj", "gltf" or "glb") and
// compiles it.
func MeshToTree(data []byte, format string, opts Options) (*voxel.Tree, error) {
	m, err := mesh.Decode(data, format)
	if err != nil {
		return nil, err
	}
	vm, err := mesh.Voxelize(m, opts.Mesh)
	if err != nil {
		return nil, err
	}
	t, _, err := CompileMap(vm, opts)
	return t, err
}

// MeshToTreeBytes is MeshToTree followed by compressed serialization.
func MeshToTreeBytes(data []byte, format string, opts Options) ([]byte, error) {
	t, err := MeshToTree(data, format, opts)
	if err != nil {
		return nil, err
	}
	return voxel.MarshalTree(t, opts.Compression)
}

// VoxToTree bakes a .vox scene and compiles it.
func VoxToTree(data []byte, opts Options) (*voxel.Tree, error) {
	f, err := scene.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	vm, err := scene.Voxelize(f)
	if err != nil {
		return nil, err
	}
	t, _, err := CompileMap(vm, opts)
	return t, err
}

// VoxToTreeBytes is VoxToTree followed by compressed serialization.
func VoxToTreeBytes(data []byte, opts Options) ([]byte, error) {
	t, err := VoxToTree(data, opts)
	if err != nil {
		return nil, err
	}
	return voxel.MarshalTree(t, opts.Compression)
}

// TreeInfo summarizes a compiled tree.
type TreeInfo struct {
	Exp         uint32  `json:"exp"`
	CellSize    float32 `json:"cell_size"`
	Side        uint64  `json:"side"`
	Nodes       int     `json:"nodes"`
	LeafNodes   int     `json:"leaf_nodes"`
	Voxels      int     `json:"voxels"`
	NodeBytes   int     `json:"node_bytes"`
	LeafBytes   int     `json:"leaf_bytes"`
	Compression string  `json:"compression,omitempty"`
	StoredBytes int     `json:"stored_bytes,omitempty"`
}

// Info walks the tree and counts its nodes and voxels.
func Info(t *voxel.Tree) TreeInfo {
	nodeBytes, leafBytes := t.Sizes()
	info := TreeInfo{
		Exp:       t.Exp,
		CellSize:  t.CellSize(),
		Side:      uint64(1) << t.Exp,
		Nodes:     len(t.Nodes),
		NodeBytes: nodeBytes,
		LeafBytes: leafBytes,
	}
	for _, n := range t.Nodes {
		if n.IsLeaf() && !n.Empty() {
			info.LeafNodes++
			info.Voxels += n.Count()
		}
	}
	return info
}

// DecodeTree reads a stored tree and reports its summary.
func DecodeTree(data []byte) (*voxel.Tree, TreeInfo, error) {
	raw, comp, err := voxel.Decompress(data)
	if err != nil {
		return nil, TreeInfo{}, err
	}
	t, err := voxel.DecodeTree(raw)
	if err != nil {
		return nil, TreeInfo{}, err
	}
	info := Info(t)
	info.Compression = comp.String()
	info.StoredBytes = len(data)
	return t, info, nil
}

// TreeToGLB expands a stored tree and returns a greedy meshed .glb.
func TreeToGLB(data []byte) ([]byte, error) {
	t, _, err := DecodeTree(data)
	if err != nil {
		return nil, err
	}
	doc := GLBDocument(t)

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// GLBDocument builds a glTF document with one mesh colored by the tree
// palette, in voxel units.
func GLBDocument(t *voxel.Tree) *gltf.Document {
	m := voxel.GenerateMesh(t.Expand())

	positions := make([][3]float32, len(m.Vertices))
	colors := make([][4]float32, len(m.Vertices))
	hasAlpha := false
	for i, v := range m.Vertices {
		positions[i] = v.Position
		colors[i] = t.Palette[v.Color]
		if colors[i][3] < 1.0 {
			hasAlpha = true
		}
	}
	normals := flatNormals(positions, m.Indices)

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxtree -> GLB"
	if len(m.Indices) == 0 {
		return doc
	}

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, m.Indices)
	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices: gltf.Index(indicesAccessor),
	}
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	material := &gltf.Material{PBRMetallicRoughness: pbr}
	if hasAlpha {
		material.AlphaMode = gltf.AlphaBlend
	} else {
		material.AlphaMode = gltf.AlphaOpaque
	}
	doc.Materials = []*gltf.Material{material}
	prim.Material = gltf.Index(0)
	doc.Meshes = []*gltf.Mesh{{Name: "VoxelTree", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc
}

func flatNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			vec1[1]*vec2[2] - vec1[2]*vec2[1],
			vec1[2]*vec2[0] - vec1[0]*vec2[2],
			vec1[0]*vec2[1] - vec1[1]*vec2[0],
		}
		length := float32(math.Sqrt(float64(cross[0]*cross[0] + cross[1]*cross[1] + cross[2]*cross[2])))
		if length > 0 {
			cross[0] /= length
			cross[1] /= length
			cross[2] /= length
		}
		normals[v0] = cross
		normals[v1] = cross
		normals[v2] = cross
	}
	return normals
}
