package voxel

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the codec of the storage container.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
	// CompBest tries every codec when compressing and keeps the smallest.
	// It is never written to a container.
	CompBest Compression = 0xFF
)

const (
	packMagic   = "VXTZ"
	packVersion = 1
	// packHeaderSize covers magic, version, codec, raw length and checksum.
	packHeaderSize = 4 + 1 + 1 + 4 + 8
	// maxRatio bounds the buffer preallocated from the stored raw length.
	maxRatio = 64
	// minDecoderMemory leaves room for the window of frames written by Compress.
	minDecoderMemory = 16 << 20
)

// ParseCompression maps a config name to a codec.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompNone, nil
	case "zlib":
		return CompZlib, nil
	case "zstd", "":
		return CompZstd, nil
	case "best":
		return CompBest, nil
	default:
		return 0, errors.New("unknown compression").
			WithTag("name", name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZlib:
		return "zlib"
	case CompZstd:
		return "zstd"
	case CompBest:
		return "best"
	default:
		return "unknown"
	}
}

// Compress wraps raw in a storage container:
//
//	"VXTZ" | ver u8 | codec u8 | raw length u32 | xxhash64(raw) u64 | payload
func Compress(raw []byte, comp Compression) ([]byte, error) {
	var payload []byte
	if comp == CompBest {
		comp, payload = bestCompression(raw)
	} else {
		var err error
		if payload, err = compressPayload(raw, comp); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	out.Grow(packHeaderSize + len(payload))
	out.WriteString(packMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(packVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(raw)))
	_ = binary.Write(&out, binary.LittleEndian, xxhash.Sum64(raw))
	_, _ = out.Write(payload)
	return out.Bytes(), nil
}

// Decompress unwraps a container written by Compress and verifies its length
// and checksum.
func Decompress(data []byte) ([]byte, Compression, error) {
	if len(data) < packHeaderSize || string(data[:4]) != packMagic {
		return nil, 0, errors.New("not a voxel tree container").
			WithType(ErrTypeCorrupt)
	}
	if data[4] != packVersion {
		return nil, 0, errors.New("unsupported container version").
			WithType(ErrTypeCorrupt).
			WithTag("version", data[4])
	}
	comp := Compression(data[5])
	rawLen := binary.LittleEndian.Uint32(data[6:10])
	sum := binary.LittleEndian.Uint64(data[10:18])
	payload := data[packHeaderSize:]

	var raw []byte
	switch comp {
	case CompNone:
		raw = payload
	case CompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, 0, errors.New("opening zlib stream failed").
				WithType(ErrTypeCorrupt).
				Wrap(err)
		}
		defer zr.Close()
		// one byte past rawLen is enough to detect a longer stream
		if raw, err = io.ReadAll(io.LimitReader(zr, int64(rawLen)+1)); err != nil {
			return nil, 0, errors.New("zlib decompression failed").
				WithType(ErrTypeCorrupt).
				Wrap(err)
		}
	case CompZstd:
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(max(uint64(rawLen), minDecoderMemory)))
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		hint := min(int(rawLen), maxRatio*len(payload))
		if raw, err = dec.DecodeAll(payload, make([]byte, 0, hint)); err != nil {
			return nil, 0, errors.New("zstd decompression failed").
				WithType(ErrTypeCorrupt).
				Wrap(err)
		}
	default:
		return nil, 0, errors.New("unknown compression").
			WithType(ErrTypeCorrupt).
			WithTag("codec", uint8(comp))
	}

	if uint32(len(raw)) != rawLen {
		return nil, 0, errors.New("decompressed length mismatch").
			WithType(ErrTypeCorrupt).
			WithTag("expected", rawLen).
			WithTag("actual", len(raw))
	}
	if xxhash.Sum64(raw) != sum {
		return nil, 0, errors.New("checksum mismatch").
			WithType(ErrTypeCorrupt)
	}
	return raw, comp, nil
}

func compressPayload(raw []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompNone:
		return raw, nil
	case CompZlib:
		return zlibCompress(raw)
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	default:
		return nil, errors.New("unsupported compression").
			WithTag("codec", uint8(comp))
	}
}

func zlibCompress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func bestCompression(raw []byte) (Compression, []byte) {
	best, payload := CompNone, raw
	for _, c := range []Compression{CompZlib, CompZstd} {
		p, err := compressPayload(raw, c)
		if err != nil {
			continue
		}
		if len(p) < len(payload) {
			best, payload = c, p
		}
	}
	return best, payload
}

// MarshalTree encodes and compresses the tree.
func MarshalTree(t *Tree, comp Compression) ([]byte, error) {
	return Compress(EncodeTree(t), comp)
}

// UnmarshalTree decompresses and decodes a tree.
func UnmarshalTree(data []byte) (*Tree, error) {
	raw, _, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	return DecodeTree(raw)
}

// SaveTree writes the compressed tree to filename.
func SaveTree(t *Tree, filename string, comp Compression) error {
	data, err := MarshalTree(t, comp)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// LoadTree reads a tree written by SaveTree.
func LoadTree(filename string) (*Tree, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	t, err := UnmarshalTree(data)
	if err != nil {
		return nil, errors.New("loading tree failed").
			WithType(errors.Type(err)).
			WithTag("path", filename).
			Wrap(err)
	}
	return t, nil
}
