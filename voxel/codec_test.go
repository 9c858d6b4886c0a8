package voxel

import (
	"encoding/binary"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func isInputFormat(err error) bool {
	return errors.IsType(err, ErrTypeInputFormat)
}

func TestEncodeDecodeTree(t *testing.T) {
	m := randomMap(t, 800, 32)
	m.Palette[7] = Color{0.5, 0.25, 0.125, 1}
	tree := Compile(m, 6)

	data := EncodeTree(tree)
	nodeBytes, leafBytes := tree.Sizes()
	require.Len(t, data, treeHeaderSize+nodeBytes+leafBytes)
	require.Equal(t, "VXTR", string(data[:4]))
	require.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[5:9]))

	decoded, err := DecodeTree(data)
	require.NoError(t, err)
	require.Equal(t, tree, decoded)
}

func TestEncodeNodeLayout(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{5, 6, 7}, 9)
	data := EncodeTree(Compile(m, 4))

	hdr, body, err := ParseTreeHeader(data)
	require.NoError(t, err)
	require.Equal(t, uint8(1), hdr.Ver)
	require.Equal(t, uint32(4), hdr.Exp)
	require.Equal(t, uint32(2*NodeSize), hdr.NodeBytes)

	// root: ptr 1 internal, mask bit 21
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(body[0:4]))
	require.Equal(t, uint32(1)<<21, binary.LittleEndian.Uint32(body[4:8]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(body[8:12]))
	// leaf: ptr 0 leaf, mask bit 45
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(body[16:20]))
	require.Equal(t, uint32(1)<<13, binary.LittleEndian.Uint32(body[24:28]))
	require.Equal(t, []byte{9}, body[32:])
}

func TestDecodeTreeErrors(t *testing.T) {
	m := NewMap()
	m.SetVoxel(Pos{1, 2, 3}, 1)
	m.SetVoxel(Pos{30, 2, 3}, 2)
	good := EncodeTree(Compile(m, 6))

	clone := func() []byte { return append([]byte(nil), good...) }

	tests := []struct {
		name string
		data func() []byte
	}{
		{
			name: "empty input",
			data: func() []byte { return nil },
		},
		{
			name: "bad magic",
			data: func() []byte {
				b := clone()
				b[0] = 'X'
				return b
			},
		},
		{
			name: "unknown version",
			data: func() []byte {
				b := clone()
				b[4] = 9
				return b
			},
		},
		{
			name: "truncated header",
			data: func() []byte { return good[:100] },
		},
		{
			name: "truncated nodes",
			data: func() []byte { return good[:treeHeaderSize+NodeSize] },
		},
		{
			name: "node bytes not a multiple of the node size",
			data: func() []byte {
				b := clone()
				binary.LittleEndian.PutUint32(b[treeHeaderSize-4:], NodeSize+1)
				return b
			},
		},
		{
			name: "truncated leaves",
			data: func() []byte { return good[:len(good)-1] },
		},
		{
			name: "odd exponent",
			data: func() []byte {
				b := clone()
				binary.LittleEndian.PutUint32(b[5:9], 7)
				return b
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree, err := DecodeTree(test.data())
			require.Error(t, err)
			require.Nil(t, tree)
			require.Equal(t, ErrTypeInputFormat, errors.Type(err))
		})
	}
}
