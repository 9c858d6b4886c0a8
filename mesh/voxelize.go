package mesh

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxtree/voxel"
)

// SolidIndex is the palette index written for every voxel touched by a triangle.
const SolidIndex = 1

// DefaultResolution is the voxel resolution used for mesh assets.
const DefaultResolution = 2048

// Options configures Voxelize.
type Options struct {
	// Resolution is the side of the voxel cube the mesh is scaled into.
	Resolution uint32
	// Axes maps file coordinates into engine space.
	Axes AxisMap
	// ExhaustiveScan tests every voxel of a triangle's bounding box instead
	// of stopping each row and column at the end of the first run.
	ExhaustiveScan bool
}

// DefaultOptions returns the settings used for .obj assets.
func DefaultOptions() Options {
	return Options{
		Resolution: DefaultResolution,
		Axes:       DefaultAxes,
	}
}

// Voxelize rasterizes the mesh into a map. The mesh itself is left untouched.
// On error no map is returned.
func Voxelize(m *Mesh, opts Options) (*voxel.Map, error) {
	if opts.Resolution == 0 {
		return nil, errors.New("voxel resolution must be positive").
			WithType(voxel.ErrTypePrecondition)
	}
	if err := m.Check(); err != nil {
		return nil, err
	}

	work := &Mesh{
		Vertices:  make([]mgl32.Vec3, len(m.Vertices)),
		Triangles: m.Triangles,
	}
	for i, v := range m.Vertices {
		work.Vertices[i] = opts.Axes.Apply(v)
	}
	if err := work.Normalize(opts.Resolution); err != nil {
		return nil, err
	}

	vm := voxel.NewMap()
	mark := func(x, y, z uint32) {
		vm.SetVoxel(voxel.Pos{X: int32(x), Y: int32(y), Z: int32(z)}, SolidIndex)
	}
	for _, t := range work.Triangles {
		tri := newTriangle(work.Vertices[t[0]], work.Vertices[t[1]], work.Vertices[t[2]])
		if opts.ExhaustiveScan {
			tri.visitAll(mark)
		} else {
			tri.visit(mark)
		}
	}
	return vm, nil
}

// triangle holds the precomputed separating axis tests of one triangle
// against unit voxels with their minimum corner at integer coordinates.
type triangle struct {
	min, max     [3]uint32
	n            mgl32.Vec3
	lower, upper float32
	tests        [9]mgl32.Vec4
}

func newTriangle(a, b, c mgl32.Vec3) *triangle {
	n := b.Sub(a).Cross(c.Sub(a))
	sign := mgl32.Vec3{signum(n[0]), signum(n[1]), signum(n[2])}

	nd1 := n[0] + n[1] + n[2]
	nda := n.Dot(a)
	nds := n.Dot(sign)

	t := &triangle{
		n:     n,
		lower: nda - (nd1+nds)*0.5,
		upper: nda - (nd1-nds)*0.5,
	}
	lo := vecMin(vecMin(a, b), c)
	hi := vecMax(vecMax(a, b), c)
	for i := range lo {
		t.min[i] = uint32(lo[i])
		t.max[i] = uint32(hi[i])
	}

	tri := [3]mgl32.Vec3{a, b, c}
	for i := 0; i < 3; i++ {
		pos := tri[i]
		edge := tri[(i+1)%3].Sub(tri[i])
		for ai := 0; ai < 3; ai++ {
			bi := (ai + 1) % 3
			ci := (ai + 2) % 3

			nx := -edge[bi] * sign[ci]
			ny := edge[ai] * sign[ci]
			d := nx*pos[ai] + ny*pos[bi] - max0(nx) - max0(ny)

			var test mgl32.Vec4
			test[ai] = nx
			test[bi] = ny
			test[3] = d
			t.tests[ai*3+i] = test
		}
	}
	return t
}

func (t *triangle) intersects(x, y, z uint32) bool {
	p := mgl32.Vec3{float32(x), float32(y), float32(z)}
	d := t.n.Dot(p)
	if d < t.lower || d > t.upper {
		return false
	}
	for _, test := range t.tests {
		if test.Vec3().Dot(p) < test[3] {
			return false
		}
	}
	return true
}

// visit scans z, then y, then x and leaves a row (or a column of rows) as
// soon as a run of hits ends. Thin skewed triangles can lose voxels.
func (t *triangle) visit(f func(x, y, z uint32)) {
	for z := t.min[2]; z <= t.max[2]; z++ {
		yStarted := false
		for y := t.min[1]; y <= t.max[1]; y++ {
			xStarted := false
			for x := t.min[0]; x <= t.max[0]; x++ {
				hit := t.intersects(x, y, z)
				if hit {
					f(x, y, z)
				}
				if xStarted && !hit {
					break
				}
				xStarted = hit
			}
			if yStarted && !xStarted {
				break
			}
			yStarted = xStarted
		}
	}
}

func (t *triangle) visitAll(f func(x, y, z uint32)) {
	for z := t.min[2]; z <= t.max[2]; z++ {
		for y := t.min[1]; y <= t.max[1]; y++ {
			for x := t.min[0]; x <= t.max[0]; x++ {
				if t.intersects(x, y, z) {
					f(x, y, z)
				}
			}
		}
	}
}

// signum maps +0 to 1 and -0 to -1.
func signum(f float32) float32 {
	if math.Signbit(float64(f)) {
		return -1
	}
	return 1
}

func max0(f float32) float32 {
	if f > 0 {
		return f
	}
	return 0
}
