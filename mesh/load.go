package mesh

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"github.com/voxelsplace/voxtree/voxel"
)

// Supported reports whether the extension (".obj", ".gltf", ".glb") is a
// mesh format.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".obj", ".gltf", ".glb":
		return true
	}
	return false
}

// Load reads a mesh file, picking the reader from its extension.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, errors.New("unsupported mesh format").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("path", path)
	}
}

// Decode parses an in-memory mesh. format is a file extension with or
// without the leading dot.
func Decode(data []byte, format string) (*Mesh, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "obj":
		return ParseOBJ(bytes.NewReader(data))
	case "gltf", "glb":
		return DecodeGLTF(bytes.NewReader(data))
	default:
		return nil, errors.New("unsupported mesh format").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("format", format)
	}
}
