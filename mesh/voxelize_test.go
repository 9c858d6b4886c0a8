package mesh

import (
	"math"
	"strings"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxtree/voxel"
)

func unitCube(t *testing.T) *Mesh {
	t.Helper()
	m, err := ParseOBJ(strings.NewReader(unitCubeOBJ))
	require.NoError(t, err)
	return m
}

func countVoxels(m *voxel.Map) int {
	n := 0
	for _, k := range m.Keys() {
		n += m.BrickAt(k).Count()
	}
	return n
}

func TestVoxelizeUnitCube(t *testing.T) {
	const r = 8

	for _, exhaustive := range []bool{false, true} {
		opts := DefaultOptions()
		opts.Resolution = r
		opts.ExhaustiveScan = exhaustive

		vm, err := Voxelize(unitCube(t), opts)
		require.NoError(t, err)

		require.Equal(t, uint8(SolidIndex), vm.Voxel(voxel.Pos{X: 0, Y: 0, Z: 0}))
		require.Equal(t, uint8(SolidIndex), vm.Voxel(voxel.Pos{X: r - 1, Y: r - 1, Z: r - 1}))
		require.Equal(t, uint8(0), vm.Voxel(voxel.Pos{X: r, Y: 0, Z: 0}))
		require.Nil(t, vm.Brick(voxel.Pos{X: r, Y: 0, Z: 0}))
		// surface only
		require.Equal(t, uint8(0), vm.Voxel(voxel.Pos{X: 3, Y: 3, Z: 3}))
	}
}

func TestVoxelizeUnitCubeShell(t *testing.T) {
	opts := DefaultOptions()
	opts.Resolution = 16
	opts.ExhaustiveScan = true

	vm, err := Voxelize(unitCube(t), opts)
	require.NoError(t, err)
	require.Equal(t, 16*16*16-14*14*14, countVoxels(vm))

	min, max, ok := vm.Bounds()
	require.True(t, ok)
	require.Equal(t, voxel.Pos{}, min)
	require.Equal(t, voxel.Pos{X: 1, Y: 1, Z: 1}, max)
	require.Equal(t, uint32(4), vm.RequiredExp())
}

func TestVoxelizeEarlyExitIsSubset(t *testing.T) {
	m := &Mesh{
		Vertices:  []mgl32.Vec3{{0, 0, 0}, {10, 1, 0}, {3, 7, 9}, {9, 9, 2}},
		Triangles: [][3]uint32{{0, 1, 2}, {1, 3, 2}},
	}
	opts := Options{Resolution: 32, Axes: IdentityAxes}
	fast, err := Voxelize(m, opts)
	require.NoError(t, err)

	opts.ExhaustiveScan = true
	full, err := Voxelize(m, opts)
	require.NoError(t, err)

	require.NotZero(t, countVoxels(fast))
	require.LessOrEqual(t, countVoxels(fast), countVoxels(full))
	for _, k := range fast.Keys() {
		fb, ab := fast.BrickAt(k), full.BrickAt(k)
		require.NotNil(t, ab)
		for i, v := range fb {
			if v != 0 {
				require.Equal(t, v, ab[i])
			}
		}
	}
}

func TestVoxelizeDoesNotModifyInput(t *testing.T) {
	m := unitCube(t)
	before := append([]mgl32.Vec3(nil), m.Vertices...)
	_, err := Voxelize(m, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, before, m.Vertices)
}

func TestVoxelizeErrors(t *testing.T) {
	_, err := Voxelize(&Mesh{}, DefaultOptions())
	require.True(t, isInputFormat(err))

	m := unitCube(t)
	m.Triangles[3][1] = 99
	vm, err := Voxelize(m, DefaultOptions())
	require.Nil(t, vm)
	require.True(t, isInputFormat(err))

	flat := &Mesh{
		Vertices:  []mgl32.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
		Triangles: [][3]uint32{{0, 1, 2}},
	}
	_, err = Voxelize(flat, DefaultOptions())
	require.True(t, isInputFormat(err))

	nan := unitCube(t)
	nan.Vertices[2][1] = float32(math.NaN())
	vm, err = Voxelize(nan, DefaultOptions())
	require.Nil(t, vm)
	require.True(t, isInputFormat(err))
}

func TestVoxelizeZeroResolution(t *testing.T) {
	opts := DefaultOptions()
	opts.Resolution = 0

	vm, err := Voxelize(unitCube(t), opts)
	require.Nil(t, vm)
	require.True(t, errors.IsType(err, voxel.ErrTypePrecondition))
}
