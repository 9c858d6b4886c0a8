package mesh

import (
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxtree/voxel"
)

// LoadGLTF reads a .gltf or .glb file. External buffers are resolved
// relative to the file.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.New("opening gltf failed").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("path", path).
			Wrap(err)
	}
	m, err := fromDocument(doc)
	if err != nil {
		return nil, errors.New("reading gltf meshes failed").
			WithType(errors.Type(err)).
			WithTag("path", path).
			Wrap(err)
	}
	return m, nil
}

// DecodeGLTF reads a self-contained glTF document: a .glb stream or a
// .gltf whose buffers are embedded as data URIs.
func DecodeGLTF(r io.Reader) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.New("decoding gltf failed").
			WithType(voxel.ErrTypeInputFormat).
			Wrap(err)
	}
	return fromDocument(doc)
}

// fromDocument merges the triangle primitives of every mesh. Node
// transforms are not applied.
func fromDocument(doc *gltf.Document) (*Mesh, error) {
	m := &Mesh{}
	for mi, gm := range doc.Meshes {
		for pi, p := range gm.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				continue
			}
			part, err := readPrimitive(doc, p)
			if err != nil {
				return nil, errors.New("reading primitive failed").
					WithType(voxel.ErrTypeInputFormat).
					WithTag("mesh", mi).
					WithTag("primitive", pi).
					Wrap(err)
			}
			m.Append(part)
		}
	}
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive) (*Mesh, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok || posIdx < 0 || posIdx >= len(doc.Accessors) {
		return nil, errors.New("primitive has no position accessor")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, err
	}

	var indices []uint32
	if p.Indices != nil {
		if *p.Indices < 0 || *p.Indices >= len(doc.Accessors) {
			return nil, errors.New("index accessor out of range")
		}
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil); err != nil {
			return nil, err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	part := &Mesh{Vertices: make([]mgl32.Vec3, len(positions))}
	for i, v := range positions {
		part.Vertices[i] = mgl32.Vec3(v)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		part.Triangles = append(part.Triangles, [3]uint32{indices[i], indices[i+1], indices[i+2]})
	}
	return part, nil
}
