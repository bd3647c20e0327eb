package compress

import (
	"fmt"

	"github.com/zalo/filament/format"
)

// Codec combines compression and decompression of a single byte-level
// transform. Implementations must be safe for concurrent use.
type Codec interface {
	// Compress compresses data and returns a newly allocated result. The
	// input is never modified.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data. expectedSize is the known (or
	// best-guess) uncompressed length; pass 0 if unknown. LZ4 uses it as
	// the output buffer size and probes with a growing buffer when it is
	// 0; S2 ignores it.
	Decompress(data []byte, expectedSize int) ([]byte, error)
}

// FrameSizer is implemented by codecs whose compressed format carries its
// own uncompressed-size field, letting a caller learn the decompressed
// size without decompressing first. ArchiveReader relies on this to
// allocate its buffer before decompressing (spec §4.7 step 1).
type FrameSizer interface {
	// DecompressedSize returns the uncompressed size recorded in the
	// frame's header.
	DecompressedSize(frame []byte) (int, error)
}

// CreateCodec is a factory function that creates a Codec for the given
// compression type.
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoopCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("filament/compress: invalid compression type: %s", compressionType)
	}
}
