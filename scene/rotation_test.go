package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestDecodeRotationIdentity(t *testing.T) {
	m, err := DecodeRotation(IdentityRotation)
	require.NoError(t, err)
	require.Equal(t, mgl32.Ident3(), m)
}

func TestDecodeRotation(t *testing.T) {
	// row 0 = (0,-1,0), row 1 = (1,0,0), row 2 = (0,0,1)
	m, err := DecodeRotation(0x01 | 0x10)
	require.NoError(t, err)
	require.Equal(t, mgl32.Vec3{0, 1, 0}, m.Mul3x1(mgl32.Vec3{1, 0, 0}))
	require.Equal(t, mgl32.Vec3{-1, 0, 0}, m.Mul3x1(mgl32.Vec3{0, 1, 0}))
	require.Equal(t, mgl32.Vec3{0, 0, 1}, m.Mul3x1(mgl32.Vec3{0, 0, 1}))

	// mirror on every axis
	m, err = DecodeRotation(IdentityRotation | 0x70)
	require.NoError(t, err)
	require.Equal(t, mgl32.Vec3{-1, -2, -3}, m.Mul3x1(mgl32.Vec3{1, 2, 3}))
}

func TestDecodeRotationAllValid(t *testing.T) {
	valid := 0
	for b := 0; b < 128; b++ {
		m, err := DecodeRotation(byte(b))
		if err != nil {
			require.True(t, isInputFormat(err))
			continue
		}
		valid++
		// a signed permutation is orthonormal
		require.True(t, m.Mul3(m.Transpose()).ApproxEqual(mgl32.Ident3()), "rotation %d", b)
	}
	// 6 permutations times 8 sign combinations
	require.Equal(t, 48, valid)
}

func TestDecodeRotationInvalid(t *testing.T) {
	for _, b := range []byte{0x00, 0x03, 0x05, 0x0C, 0x0F} {
		_, err := DecodeRotation(b)
		require.Error(t, err, "rotation %#x", b)
	}
}
