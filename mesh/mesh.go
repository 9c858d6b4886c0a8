// Package mesh loads triangle meshes and rasterizes them into voxel maps.
package mesh

import (
	"math"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxtree/voxel"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Triangles [][3]uint32
}

// Append adds the vertices and triangles of o, offsetting its indices.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, t := range o.Triangles {
		m.Triangles = append(m.Triangles, [3]uint32{t[0] + base, t[1] + base, t[2] + base})
	}
}

// Check reports an input-format error when the mesh has no triangles, a
// vertex is not finite or a triangle references a missing vertex.
func (m *Mesh) Check() error {
	if len(m.Vertices) == 0 || len(m.Triangles) == 0 {
		return errors.New("empty mesh").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("vertices", len(m.Vertices)).
			WithTag("triangles", len(m.Triangles))
	}
	for i, v := range m.Vertices {
		if !finite(v) {
			return errors.New("vertex is not finite").
				WithType(voxel.ErrTypeInputFormat).
				WithTag("vertex", i)
		}
	}
	n := uint32(len(m.Vertices))
	for i, t := range m.Triangles {
		if t[0] >= n || t[1] >= n || t[2] >= n {
			return errors.New("triangle index out of range").
				WithType(voxel.ErrTypeInputFormat).
				WithTag("triangle", i).
				WithTag("vertices", n)
		}
	}
	return nil
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	min = mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max = mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range m.Vertices {
		min = vecMin(min, v)
		max = vecMax(max, v)
	}
	return min, max
}

// Normalize scales the mesh uniformly so its largest extent spans
// [0, resolution), then clamps every coordinate below resolution.
func (m *Mesh) Normalize(resolution uint32) error {
	if len(m.Vertices) == 0 {
		return errors.New("empty mesh").
			WithType(voxel.ErrTypeInputFormat)
	}
	min, max := m.Bounds()
	ext := max.Sub(min)
	size := float32(math.Max(float64(ext[0]), math.Max(float64(ext[1]), float64(ext[2]))))
	if !(size > 0) || math.IsInf(float64(size), 0) {
		return errors.New("mesh has no extent").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("extent", size)
	}

	r := float32(resolution)
	top := math.Nextafter32(r, 0)
	for i, v := range m.Vertices {
		v = v.Sub(min).Mul(r / size)
		for k := range v {
			v[k] = mgl32.Clamp(v[k], 0, top)
		}
		m.Vertices[i] = v
	}
	return nil
}

// AxisMap remaps file coordinates into engine space. Output axis i takes
// the input axis src[i], negated when neg[i] is set.
type AxisMap struct {
	src [3]int
	neg [3]bool
}

// DefaultAxes is the Wavefront convention used for .obj assets: engine
// space is (-x, z, y).
var DefaultAxes = AxisMap{src: [3]int{0, 2, 1}, neg: [3]bool{true, false, false}}

// IdentityAxes keeps coordinates unchanged.
var IdentityAxes = AxisMap{src: [3]int{0, 1, 2}}

// ParseAxisMap parses a mapping such as "-x,z,y". Each input axis must be
// used exactly once.
func ParseAxisMap(s string) (AxisMap, error) {
	var am AxisMap
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return am, errors.New("axis map needs three axes").
			WithTag("axes", s)
	}
	var used [3]bool
	for i, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		switch {
		case strings.HasPrefix(p, "-"):
			am.neg[i] = true
			p = p[1:]
		case strings.HasPrefix(p, "+"):
			p = p[1:]
		}
		if len(p) != 1 || p[0] < 'x' || p[0] > 'z' {
			return am, errors.New("invalid axis").
				WithTag("axes", s).
				WithTag("axis", p)
		}
		a := int(p[0] - 'x')
		if used[a] {
			return am, errors.New("axis used twice").
				WithTag("axes", s).
				WithTag("axis", p)
		}
		used[a] = true
		am.src[i] = a
	}
	return am, nil
}

// Apply maps a file-space position into engine space.
func (a AxisMap) Apply(v mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := range out {
		out[i] = v[a.src[i]]
		if a.neg[i] {
			out[i] = -out[i]
		}
	}
	return out
}

func (a AxisMap) String() string {
	var sb strings.Builder
	for i := range a.src {
		if i > 0 {
			sb.WriteByte(',')
		}
		if a.neg[i] {
			sb.WriteByte('-')
		}
		sb.WriteByte(byte('x' + a.src[i]))
	}
	return sb.String()
}

func vecMin(a, b mgl32.Vec3) mgl32.Vec3 {
	for i := range a {
		if b[i] < a[i] {
			a[i] = b[i]
		}
	}
	return a
}

func vecMax(a, b mgl32.Vec3) mgl32.Vec3 {
	for i := range a {
		if b[i] > a[i] {
			a[i] = b[i]
		}
	}
	return a
}
