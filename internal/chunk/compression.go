package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names the algorithm applied to an entry payload before slicing.
// The name is persisted in entry descriptors.
type Compression string

const (
	// None stores payloads as-is.
	None Compression = ""
	// LZ4 indicates LZ4 block compression (fast).
	LZ4 Compression = "lz4"
	// ZSTD indicates ZSTD compression (better ratio).
	ZSTD Compression = "zstd"
)

// MaxDecompressedSize bounds the payload size Compress records and
// Decompress accepts. Larger inputs are stored uncompressed.
const MaxDecompressedSize = 64 << 20

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 255

var (
	// ErrUnknownCompression is returned for unsupported compression names.
	ErrUnknownCompression = errors.New("unknown compression")

	// ErrCorruptPayload is returned when a compressed payload is malformed or
	// its header records an impossible size.
	ErrCorruptPayload = errors.New("corrupt compressed payload")
)

// ParseCompression maps a configuration string to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return None, nil
	case string(LZ4):
		return LZ4, nil
	case string(ZSTD):
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecompressedSize))
	return dec
}

// headerSize is the compressed payload prefix: [UncompressedSize uint32].
const headerSize = 4

// Compress applies c to data. If compression does not shrink the payload it
// is returned unchanged together with None, so callers must persist the
// returned algorithm rather than the requested one.
func Compress(data []byte, c Compression) ([]byte, Compression, error) {
	if c == None || len(data) == 0 || len(data) > MaxDecompressedSize {
		return data, None, nil
	}

	var compressed []byte
	switch c {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, None, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, None, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}

	if len(compressed) == 0 || headerSize+len(compressed) >= len(data) {
		return data, None, nil
	}

	out := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(out, uint32(len(data)))
	copy(out[headerSize:], compressed)
	return out, c, nil
}

// Decompress reverses Compress for the algorithm recorded with the payload.
func Decompress(data []byte, c Compression) ([]byte, error) {
	if c == None {
		return data, nil
	}
	if c != LZ4 && c != ZSTD {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: too small for header", ErrCorruptPayload)
	}

	size := binary.LittleEndian.Uint32(data)
	body := data[headerSize:]
	if size > MaxDecompressedSize {
		return nil, fmt.Errorf("%w: recorded size %d exceeds %d", ErrCorruptPayload, size, MaxDecompressedSize)
	}

	switch c {
	case LZ4:
		if uint64(size) > lz4MaxRatio*uint64(len(body))+16 {
			return nil, fmt.Errorf("%w: recorded size %d from %d bytes", ErrCorruptPayload, size, len(body))
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptPayload)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		// The header is untrusted; the buffer grows as frames decode.
		out, err := dec.DecodeAll(body, make([]byte, 0, min(int(size), 16*len(body))))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
		}
		if uint32(len(out)) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptPayload)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
}
