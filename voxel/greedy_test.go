package voxel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateMeshSingleVoxel(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{3, 4, 5}, 2)

	mesh := GenerateMesh(m)
	require.Len(t, mesh.Vertices, 6*4)
	require.Len(t, mesh.Indices, 6*6)
	for _, v := range mesh.Vertices {
		require.Equal(t, uint8(2), v.Color)
		require.InDelta(t, 3.5, v.Position[0], 0.5+1e-6)
		require.InDelta(t, 4.5, v.Position[1], 0.5+1e-6)
		require.InDelta(t, 5.5, v.Position[2], 0.5+1e-6)
	}
}

func TestGenerateMeshCullsAcrossBricks(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{7, 0, 0}, 1)
	m.SetVoxel(Pos{8, 0, 0}, 1)

	mesh := GenerateMesh(m)
	// bricks mesh separately, only the shared face is hidden
	require.Len(t, mesh.Indices, 10*6)

	m.SetVoxel(Pos{6, 0, 0}, 1)
	mesh = GenerateMesh(m)
	// (6,0,0) and (7,0,0) merge inside their brick
	require.Len(t, mesh.Indices, 10*6)
}
