package scene

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxtree/voxel"
)

// IdentityRotation is the encoded identity rotation.
const IdentityRotation = 0x04

// DecodeRotation decodes a packed rotation byte. Bits 0-1 give the column of
// the non-zero entry in row 0, bits 2-3 the one in row 1, row 2 takes the
// remaining column. Bits 4, 5 and 6 negate rows 0, 1 and 2.
func DecodeRotation(b byte) (mgl32.Mat3, error) {
	i0 := int(b & 0x03)
	i1 := int(b>>2) & 0x03
	if i0 == 3 || i1 == 3 || i0 == i1 {
		return mgl32.Mat3{}, errors.New("invalid rotation").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("rotation", b)
	}
	i2 := 3 - i0 - i1

	sign := func(bit uint) float32 {
		if b&(1<<bit) != 0 {
			return -1
		}
		return 1
	}

	// column-major: element (row, col) lives at col*3 + row
	var m mgl32.Mat3
	m[i0*3+0] = sign(4)
	m[i1*3+1] = sign(5)
	m[i2*3+2] = sign(6)
	return m, nil
}
