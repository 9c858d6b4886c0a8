package voxel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapSetVoxel(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{1, 2, 3}, 0)
	require.Equal(t, 0, m.Len())

	m.SetVoxel(Pos{1, 2, 3}, 7)
	m.SetVoxel(Pos{-1, 9, 3}, 4)
	require.Equal(t, 2, m.Len())
	require.Equal(t, uint8(7), m.Voxel(Pos{1, 2, 3}))
	require.Equal(t, uint8(4), m.Voxel(Pos{-1, 9, 3}))
	require.Equal(t, uint8(0), m.Voxel(Pos{2, 2, 3}))

	b := m.Brick(Pos{-1, 9, 3})
	require.NotNil(t, b)
	require.Equal(t, uint8(4), b[CellIndex(7, 1, 3)])
	require.Same(t, b, m.BrickAt(Pos{-1, 1, 0}))
	require.Nil(t, m.Brick(Pos{100, 0, 0}))
}

func TestMapPrune(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{0, 0, 0}, 1)
	m.SetVoxel(Pos{8, 0, 0}, 1)
	m.SetVoxel(Pos{8, 0, 0}, 0)
	require.Equal(t, 2, m.Len())

	m.Prune()
	require.Equal(t, 1, m.Len())
	require.NotNil(t, m.BrickAt(Pos{}))
}

func TestHasBricksInRegion(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{20, 3, 9}, 1) // chunk (2, 0, 1)

	t.Run("zero size is always false", func(t *testing.T) {
		require.False(t, m.HasBricksInRegion(Pos{20, 3, 9}, 0))
		require.False(t, m.HasBricksInRegion(Pos{}, 0))
	})

	t.Run("region holding the chunk", func(t *testing.T) {
		require.True(t, m.HasBricksInRegion(Pos{16, 0, 8}, 8))
		require.True(t, m.HasBricksInRegion(Pos{}, 32))
		require.True(t, m.HasBricksInRegion(Pos{23, 7, 15}, 1))
	})

	t.Run("disjoint region", func(t *testing.T) {
		require.False(t, m.HasBricksInRegion(Pos{0, 0, 0}, 16))
		require.False(t, m.HasBricksInRegion(Pos{24, 0, 8}, 8))
		require.False(t, m.HasBricksInRegion(Pos{0, 64, 0}, 64))
	})

	t.Run("regions wider than 2^31", func(t *testing.T) {
		require.True(t, m.HasBricksInRegion(Pos{}, 1<<31))
		require.True(t, m.HasBricksInRegion(Pos{}, math.MaxUint32))
		require.True(t, m.HasBricksInRegion(Pos{-1 << 30, -1 << 30, -1 << 30}, 1<<31))
		require.False(t, m.HasBricksInRegion(Pos{0, 64, 0}, math.MaxUint32))
	})

	t.Run("both scan strategies agree", func(t *testing.T) {
		dense := NewMap()
		for x := int32(0); x < 64; x += 8 {
			for z := int32(0); z < 64; z += 8 {
				dense.SetVoxel(Pos{x, 0, z}, 1)
			}
		}
		dense.SetVoxel(Pos{200, 200, 200}, 1)
		// 65 keys: small regions probe cells, large regions scan keys
		require.True(t, dense.HasBricksInRegion(Pos{8, 0, 8}, 8))
		require.False(t, dense.HasBricksInRegion(Pos{8, 8, 8}, 8))
		require.True(t, dense.HasBricksInRegion(Pos{128, 128, 128}, 128))
		require.False(t, dense.HasBricksInRegion(Pos{0, 64, 0}, 128))
	})
}

func TestShiftToPositive(t *testing.T) {
	t.Run("empty map", func(t *testing.T) {
		m := NewMap()
		m.ShiftToPositive()
		require.Equal(t, 0, m.Len())
	})

	t.Run("already positive", func(t *testing.T) {
		m := NewMap()
		m.SetVoxel(Pos{9, 0, 0}, 1)
		m.ShiftToPositive()
		require.NotNil(t, m.BrickAt(Pos{1, 0, 0}))
	})

	t.Run("negative keys", func(t *testing.T) {
		m := NewMap()
		m.SetVoxel(Pos{-17, 4, 0}, 3) // chunk (-3, 0, 0)
		m.SetVoxel(Pos{0, -1, 40}, 5) // chunk (0, -1, 5)
		m.ShiftToPositive()

		min, max, ok := m.Bounds()
		require.True(t, ok)
		require.Equal(t, Pos{0, 0, 0}, min)
		require.Equal(t, Pos{3, 1, 5}, max)
		require.NotNil(t, m.BrickAt(Pos{0, 1, 0}))
		require.NotNil(t, m.BrickAt(Pos{3, 0, 5}))

		before := m.Keys()
		m.ShiftToPositive()
		require.Equal(t, before, m.Keys())
	})
}

func TestRequiredExp(t *testing.T) {
	m := NewMap()
	require.Equal(t, uint32(2), m.RequiredExp())

	m.SetVoxel(Pos{0, 0, 0}, 1)
	require.Equal(t, uint32(4), m.RequiredExp())

	m.SetVoxel(Pos{15, 0, 0}, 1)
	require.Equal(t, uint32(4), m.RequiredExp())

	m.SetVoxel(Pos{16, 0, 0}, 1)
	require.Equal(t, uint32(6), m.RequiredExp())

	m.SetVoxel(Pos{0, 1000, 0}, 1)
	require.Equal(t, uint32(10), m.RequiredExp())
}

func TestKeysMortonOrder(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{8, 8, 8}, 1)
	m.SetVoxel(Pos{0, 0, 8}, 1)
	m.SetVoxel(Pos{8, 0, 0}, 1)
	m.SetVoxel(Pos{0, 0, 0}, 1)
	require.Equal(t, []Pos{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 1, 1}}, m.Keys())
}

func TestInterleave(t *testing.T) {
	for v, want := range map[uint32]uint64{
		0:        0,
		1:        1,
		2:        1 << 3,
		3:        1<<3 | 1,
		0x1fffff: 0x1249249249249249,
		// bits above 21 are dropped
		1 << 21: 0,
	} {
		require.Equal(t, want, interleave(v), "value %#x", v)
	}

	require.Less(t, mortonKey(Pos{1, 0, 0}), mortonKey(Pos{0, 1, 0}))
	require.Less(t, mortonKey(Pos{0, 1, 0}), mortonKey(Pos{0, 0, 1}))
	require.Less(t, mortonKey(Pos{-1, 0, 0}), mortonKey(Pos{0, 0, 0}))
}
