package mesh

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxtree/voxel"
)

// LoadOBJ reads a Wavefront .obj file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, errors.New("parsing obj failed").
			WithType(errors.Type(err)).
			WithTag("path", path).
			Wrap(err)
	}
	return m, nil
}

// ParseOBJ reads vertex positions and faces. Polygons are fan triangulated,
// every other statement is ignored.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.New("vertex needs three coordinates").
					WithType(voxel.ErrTypeInputFormat).
					WithTag("line", line)
			}
			var v mgl32.Vec3
			for i := range v {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, errors.New("invalid vertex coordinate").
						WithType(voxel.ErrTypeInputFormat).
						WithTag("line", line).
						Wrap(err)
				}
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return nil, errors.New("vertex coordinate is not finite").
						WithType(voxel.ErrTypeInputFormat).
						WithTag("line", line).
						WithTag("value", fields[i+1])
				}
				v[i] = float32(f)
			}
			m.Vertices = append(m.Vertices, v)

		case "f":
			if len(fields) < 4 {
				return nil, errors.New("face needs at least three vertices").
					WithType(voxel.ErrTypeInputFormat).
					WithTag("line", line)
			}
			idx := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				i, err := objIndex(ref, len(m.Vertices))
				if err != nil {
					return nil, errors.New("invalid face index").
						WithType(voxel.ErrTypeInputFormat).
						WithTag("line", line).
						WithTag("ref", ref).
						Wrap(err)
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				m.Triangles = append(m.Triangles, [3]uint32{idx[0], idx[k], idx[k+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.New("reading obj failed").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("line", line).
			Wrap(err)
	}
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// objIndex resolves the position part of a face reference such as "3",
// "3/1", "3//2" or "-1". Indices are 1-based, negatives count from the end.
func objIndex(ref string, count int) (uint32, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, err
	}
	switch {
	case n > 0 && n <= count:
		return uint32(n - 1), nil
	case n < 0 && -n <= count:
		return uint32(count + n), nil
	default:
		return 0, errors.Newf("vertex %d out of range", n).
			WithTag("vertices", count)
	}
}
