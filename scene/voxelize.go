package scene

import (
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/voxelsplace/voxtree/voxel"
)

// Voxelize bakes every shape of the scene graph into a map, converts the
// palette to linear color and shifts the map to positive coordinates.
// Files without a scene graph bake each model once at the origin.
func Voxelize(f *File) (*voxel.Map, error) {
	m := voxel.NewMap()
	m.Palette = LinearPalette(f.Palette)

	b := baker{file: f, m: m}
	if len(f.Nodes) == 0 {
		for i := range f.Models {
			if err := b.bakeModel(uint32(i), mgl32.Ident3(), [3]int32{}); err != nil {
				return nil, err
			}
		}
	} else if err := b.descend(0, mgl32.Ident3(), [3]int32{}, 0); err != nil {
		return nil, err
	}

	m.ShiftToPositive()
	return m, nil
}

// LinearPalette converts 8-bit sRGB colors to linear RGB. Alpha is scaled
// to [0, 1] unchanged.
func LinearPalette(p [256][4]uint8) voxel.Palette {
	var out voxel.Palette
	for i, c := range p {
		r, g, b := colorful.Color{
			R: float64(c[0]) / 255,
			G: float64(c[1]) / 255,
			B: float64(c[2]) / 255,
		}.LinearRgb()
		out[i] = voxel.Color{float32(r), float32(g), float32(b), float32(c[3]) / 255}
	}
	return out
}

type baker struct {
	file *File
	m    *voxel.Map
}

func (b *baker) descend(id uint32, rot mgl32.Mat3, t [3]int32, depth int) error {
	if depth > len(b.file.Nodes) {
		return errors.New("scene graph has a cycle").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("node", id)
	}
	n, ok := b.file.Nodes[id]
	if !ok {
		return errors.New("missing scene node").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("node", id)
	}

	switch n.Kind {
	case ShapeNode:
		for _, model := range n.Models {
			if err := b.bakeModel(model, rot, t); err != nil {
				return err
			}
		}

	case TransformNode:
		local, localRot, err := frameTransform(n)
		if err != nil {
			return err
		}
		moved := rot.Mul3x1(vec3(local))
		t = [3]int32{t[0] + int32(moved[0]), t[1] + int32(moved[1]), t[2] + int32(moved[2])}
		rot = rot.Mul3(localRot)
		return b.descend(n.Child, rot, t, depth+1)

	case GroupNode:
		for _, child := range n.Children {
			if err := b.descend(child, rot, t, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// bakeModel writes the model voxels rotated about the model center, then
// translated, with y and z swapped into engine space.
func (b *baker) bakeModel(id uint32, rot mgl32.Mat3, t [3]int32) error {
	if int(id) >= len(b.file.Models) {
		return errors.New("shape references a missing model").
			WithType(voxel.ErrTypeInputFormat).
			WithTag("model", id)
	}
	model := &b.file.Models[id]
	half := [3]int32{int32(model.Size[0] / 2), int32(model.Size[1] / 2), int32(model.Size[2] / 2)}

	for _, v := range model.Voxels {
		local := [3]int32{int32(v.X) - half[0], int32(v.Y) - half[1], int32(v.Z) - half[2]}
		r := rot.Mul3x1(vec3(local))
		p := voxel.Pos{
			X: int32(r[0]) + t[0],
			Y: int32(r[2]) + t[2],
			Z: int32(r[1]) + t[1],
		}
		b.m.SetVoxel(p, v.Index)
	}
	return nil
}

// frameTransform reads the translation ("_t") and rotation ("_r") of the
// first frame. Missing attributes mean no translation and no rotation.
func frameTransform(n *Node) ([3]int32, mgl32.Mat3, error) {
	var t [3]int32
	rot := mgl32.Ident3()
	if len(n.Frames) == 0 {
		return t, rot, nil
	}
	frame := n.Frames[0]

	if s, ok := frame["_t"]; ok {
		parts := strings.Fields(s)
		if len(parts) != 3 {
			return t, rot, transformError(n, "_t", s, nil)
		}
		for i, p := range parts {
			v, err := strconv.ParseInt(p, 10, 32)
			if err != nil {
				return t, rot, transformError(n, "_t", s, err)
			}
			t[i] = int32(v)
		}
	}

	if s, ok := frame["_r"]; ok {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
		if err != nil {
			return t, rot, transformError(n, "_r", s, err)
		}
		if rot, err = DecodeRotation(byte(v)); err != nil {
			return t, rot, err
		}
	}
	return t, rot, nil
}

func transformError(n *Node, attr, value string, err error) error {
	e := errors.New("invalid transform attribute").
		WithType(voxel.ErrTypeInputFormat).
		WithTag("node", n.ID).
		WithTag("attribute", attr).
		WithTag("value", value)
	if err != nil {
		return e.Wrap(err)
	}
	return e
}

func vec3(v [3]int32) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
