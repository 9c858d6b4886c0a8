package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxtree/voxel"
)

const unitCubeOBJ = `# unit cube
o cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
vn 0 0 1
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 2 3 7 6
f 3 4 8 7
f 4 1 5 8
`

func isInputFormat(err error) bool {
	return errors.IsType(err, voxel.ErrTypeInputFormat)
}

func TestParseOBJ(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(unitCubeOBJ))
	require.NoError(t, err)
	require.Len(t, m.Vertices, 8)
	require.Len(t, m.Triangles, 12)
	require.Equal(t, [3]uint32{0, 3, 2}, m.Triangles[0])
	require.Equal(t, [3]uint32{0, 2, 1}, m.Triangles[1])
}

func TestParseOBJFaceReferences(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
f 1/1/1 2//1 3/1
f -3 -2 -1
`
	m, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, [][3]uint32{{0, 1, 2}, {0, 1, 2}}, m.Triangles)
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "no faces", src: "v 0 0 0\nv 1 0 0\nv 0 1 0\n"},
		{name: "short vertex", src: "v 0 0\n"},
		{name: "bad coordinate", src: "v 0 zero 0\n"},
		{name: "nan coordinate", src: "v nan 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 2 3 4\n"},
		{name: "infinite coordinate", src: "v 0 0 0\nv +Inf 0 0\nv 0 1 0\nf 1 2 3\n"},
		{name: "short face", src: "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{name: "index past the end", src: "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{name: "zero index", src: "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{name: "negative index past the start", src: "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -4 1 2\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := ParseOBJ(strings.NewReader(test.src))
			require.Error(t, err)
			require.Nil(t, m)
			require.True(t, isInputFormat(err))
		})
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.obj")
	require.NoError(t, os.WriteFile(path, []byte(unitCubeOBJ), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Triangles, 12)

	bad := filepath.Join(t.TempDir(), "bad.obj")
	require.NoError(t, os.WriteFile(bad, []byte("f 1 2 3\n"), 0o644))
	_, err = Load(bad)
	require.True(t, isInputFormat(err))

	_, err = Load(filepath.Join(t.TempDir(), "cube.stl"))
	require.True(t, isInputFormat(err))
}
