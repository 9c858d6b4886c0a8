// Package scene reads MagicaVoxel .vox scenes and bakes them into voxel maps.
package scene

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"github.com/voxelsplace/voxtree/voxel"
)

const (
	voxMagic     = "VOX "
	maxChunkSize = 1 << 30
)

// Voxel is one cell of a model. Index is the palette index, 1 to 255.
type Voxel struct {
	X, Y, Z, Index uint8
}

// Model is a dense model with a sparse voxel list.
type Model struct {
	Size   [3]uint32
	Voxels []Voxel
}

// NodeKind identifies a scene graph node.
type NodeKind uint8

const (
	TransformNode NodeKind = iota
	GroupNode
	ShapeNode
)

func (k NodeKind) String() string {
	switch k {
	case TransformNode:
		return "transform"
	case GroupNode:
		return "group"
	case ShapeNode:
		return "shape"
	default:
		return "unknown"
	}
}

// Node is a scene graph node. Transforms use Child and Frames, groups use
// Children, shapes use Models.
type Node struct {
	ID         uint32
	Kind       NodeKind
	Attributes map[string]string
	Child      uint32
	Frames     []map[string]string
	Children   []uint32
	Models     []uint32
}

// File is a decoded .vox file.
type File struct {
	Version uint32
	Models  []Model
	// Palette holds the file colors as 8-bit sRGB, indexed by voxel index.
	// Index 0 is unused.
	Palette [256][4]uint8
	Nodes   map[uint32]*Node
}

// Load reads a .vox file.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vf, err := Decode(f)
	if err != nil {
		return nil, errors.New("reading vox failed").
			WithType(errors.Type(err)).
			WithTag("path", path).
			Wrap(err)
	}
	return vf, nil
}

// Decode reads a .vox stream. Chunks other than the model, palette and
// scene graph chunks are skipped.
func Decode(r io.Reader) (*File, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, formatError("truncated vox header", err)
	}
	if string(hdr[:4]) != voxMagic {
		return nil, errors.New("not a vox file").
			WithType(voxel.ErrTypeInputFormat)
	}

	f := &File{
		Version: binary.LittleEndian.Uint32(hdr[4:]),
		Palette: defaultPalette(),
		Nodes:   make(map[uint32]*Node),
	}

	for {
		var head [12]byte
		if _, err := io.ReadFull(r, head[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, formatError("truncated chunk header", err)
		}
		id := string(head[:4])
		size := binary.LittleEndian.Uint32(head[4:8])
		if size > maxChunkSize {
			return nil, errors.New("chunk too large").
				WithType(voxel.ErrTypeInputFormat).
				WithTag("chunk", id).
				WithTag("size", size)
		}

		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, errors.New("truncated chunk").
				WithType(voxel.ErrTypeInputFormat).
				WithTag("chunk", id).
				Wrap(err)
		}

		var err error
		switch id {
		case "MAIN":
			// children follow as regular chunks
			continue
		case "SIZE":
			err = f.readSize(data)
		case "XYZI":
			if len(f.Models) == 0 {
				err = errors.New("XYZI without SIZE")
				break
			}
			err = f.readVoxels(&f.Models[len(f.Models)-1], data)
		case "RGBA":
			f.readPalette(data)
		case "nTRN", "nGRP", "nSHP":
			err = f.readNode(id, data)
		}
		if err != nil {
			return nil, errors.New("invalid chunk").
				WithType(voxel.ErrTypeInputFormat).
				WithTag("chunk", id).
				Wrap(err)
		}
	}
	return f, nil
}

func (f *File) readSize(data []byte) error {
	if len(data) < 12 {
		return errors.New("SIZE chunk too small")
	}
	f.Models = append(f.Models, Model{Size: [3]uint32{
		binary.LittleEndian.Uint32(data[0:4]),
		binary.LittleEndian.Uint32(data[4:8]),
		binary.LittleEndian.Uint32(data[8:12]),
	}})
	return nil
}

func (f *File) readVoxels(m *Model, data []byte) error {
	if len(data) < 4 {
		return errors.New("XYZI chunk too small")
	}
	n := int(binary.LittleEndian.Uint32(data[:4]))
	if n > (len(data)-4)/4 {
		return errors.New("XYZI voxel count overflows chunk").
			WithTag("count", n)
	}
	m.Voxels = make([]Voxel, n)
	for i := range m.Voxels {
		o := 4 + i*4
		m.Voxels[i] = Voxel{X: data[o], Y: data[o+1], Z: data[o+2], Index: data[o+3]}
	}
	return nil
}

// readPalette stores RGBA entry i under palette index i+1.
func (f *File) readPalette(data []byte) {
	for i := 0; i < 255 && i*4+3 < len(data); i++ {
		copy(f.Palette[i+1][:], data[i*4:i*4+4])
	}
}

func (f *File) readNode(id string, data []byte) error {
	r := &chunkReader{data: data}
	n := &Node{ID: r.u32(), Attributes: r.dict()}

	switch id {
	case "nTRN":
		n.Kind = TransformNode
		n.Child = r.u32()
		r.u32() // reserved
		r.u32() // layer
		frames := r.u32()
		for i := uint32(0); i < frames && r.err == nil; i++ {
			n.Frames = append(n.Frames, r.dict())
		}
	case "nGRP":
		n.Kind = GroupNode
		count := r.u32()
		for i := uint32(0); i < count && r.err == nil; i++ {
			n.Children = append(n.Children, r.u32())
		}
	case "nSHP":
		n.Kind = ShapeNode
		count := r.u32()
		for i := uint32(0); i < count && r.err == nil; i++ {
			n.Models = append(n.Models, r.u32())
			r.dict()
		}
	}
	if r.err != nil {
		return r.err
	}
	if _, dup := f.Nodes[n.ID]; dup {
		return errors.New("duplicate node id").
			WithTag("node", n.ID)
	}
	f.Nodes[n.ID] = n
	return nil
}

// chunkReader decodes the little-endian fields of a chunk body. The first
// short read sticks in err and later reads return zero values.
type chunkReader struct {
	data []byte
	off  int
	err  error
}

func (r *chunkReader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = errors.New("chunk body too short").
			WithTag("offset", r.off).
			WithTag("need", n)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *chunkReader) u32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *chunkReader) str() string {
	n := r.u32()
	return string(r.next(int(n)))
}

func (r *chunkReader) dict() map[string]string {
	n := r.u32()
	d := make(map[string]string)
	for i := uint32(0); i < n && r.err == nil; i++ {
		k := r.str()
		d[k] = r.str()
	}
	return d
}

// defaultPalette is the palette MagicaVoxel uses for files without an RGBA
// chunk: the 6x6x6 color cube minus black, then red, green, blue and gray
// ramps. Index 0 stays empty.
func defaultPalette() [256][4]uint8 {
	steps := [...]uint8{0xff, 0xcc, 0x99, 0x66, 0x33, 0x00}
	ramp := [...]uint8{0xee, 0xdd, 0xbb, 0xaa, 0x88, 0x77, 0x55, 0x44, 0x22, 0x11}

	var p [256][4]uint8
	i := 1
	for _, r := range steps {
		for _, g := range steps {
			for _, b := range steps {
				if r|g|b == 0 {
					continue
				}
				p[i] = [4]uint8{r, g, b, 0xff}
				i++
			}
		}
	}
	for axis := 0; axis < 3; axis++ {
		for _, v := range ramp {
			p[i][axis] = v
			p[i][3] = 0xff
			i++
		}
	}
	for _, v := range ramp {
		p[i] = [4]uint8{v, v, v, 0xff}
		i++
	}
	return p
}

func formatError(msg string, err error) error {
	return errors.New(msg).
		WithType(voxel.ErrTypeInputFormat).
		Wrap(err)
}
