package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/zalo/filament/errs"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd library is explicitly designed for decoder reuse:
// "The decoder has been designed to operate without allocations after a warmup.
// This means that you should store the decoder for best performance."
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1), // single-threaded for predictable performance
			zstd.WithDecoderLowmem(false),  // use more memory for better performance
		)
		if err != nil {
			panic(fmt.Sprintf("filament/compress: failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPools holds one pooled encoder per level so Compress never pays
// for reconfiguring a pooled encoder's level on every call.
var zstdEncoderPools = map[ZstdLevel]*sync.Pool{
	ZstdLevelDefault: {
		New: func() any { return newZstdEncoder(zstd.SpeedDefault) },
	},
	ZstdLevelBest: {
		New: func() any { return newZstdEncoder(zstd.SpeedBestCompression) },
	},
}

func newZstdEncoder(level zstd.EncoderLevel) *zstd.Encoder {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		panic(fmt.Sprintf("filament/compress: failed to create zstd encoder for pool: %v", err))
	}

	return encoder
}

// Compress compresses data using Zstandard, at the codec's configured level.
// Uses a pooled encoder for better performance (eliminates allocation overhead).
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	pool := zstdEncoderPools[c.level]
	encoder := pool.Get().(*zstd.Encoder) //nolint:forcetypeassert
	defer pool.Put(encoder)

	// EncodeAll is stateless - safe to use with a pooled encoder.
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses Zstd-compressed data. expectedSize is used as a
// capacity hint; it is not required to be exact, unlike the block-format
// codecs.
func (c ZstdCodec) Decompress(data []byte, expectedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder) //nolint:forcetypeassert
	defer zstdDecoderPool.Put(decoder)

	var dst []byte
	if expectedSize > 0 {
		dst = make([]byte, 0, expectedSize)
	}

	// DecodeAll is stateless - safe to use with a pooled decoder. Even if
	// this call fails, the decoder can be reused for the next call.
	decompressed, err := decoder.DecodeAll(data, dst)
	if err != nil {
		return nil, fmt.Errorf("filament/compress: zstd decompression failed: %w", err)
	}

	return decompressed, nil
}

// DecompressedSize reads the Frame_Content_Size field out of a zstd frame
// header without decompressing the frame, per RFC 8878 §3.1.1.
func (c ZstdCodec) DecompressedSize(frame []byte) (int, error) {
	if len(frame) < zstdMagicNumSize+1 {
		return 0, fmt.Errorf("%w: %w", errs.ErrCorruptArchive, zstdFrameHeaderError("frame shorter than magic+descriptor"))
	}

	if magic := binary.LittleEndian.Uint32(frame[:zstdMagicNumSize]); magic != zstdMagicNumber {
		return 0, fmt.Errorf("%w: %w", errs.ErrCorruptArchive, zstdFrameHeaderError("bad magic number"))
	}

	pos := zstdMagicNumSize
	descriptor := frame[pos]
	pos++

	dictIDFlag := descriptor & 0x03
	singleSegment := descriptor&0x20 != 0
	contentSizeFlag := descriptor >> 6

	if !singleSegment {
		// Window_Descriptor, one byte.
		if pos >= len(frame) {
			return 0, fmt.Errorf("%w: %w", errs.ErrCorruptArchive, zstdFrameHeaderError("truncated window descriptor"))
		}
		pos++
	}

	dictIDSize := map[byte]int{0: 0, 1: 1, 2: 2, 3: 4}[dictIDFlag]
	pos += dictIDSize

	var sizeFieldBytes int
	switch {
	case singleSegment && contentSizeFlag == 0:
		sizeFieldBytes = 1
	case contentSizeFlag == 0:
		// Single_Segment_flag == 0 and flag == 0: content size absent.
		return 0, fmt.Errorf("%w: %w", errs.ErrCorruptArchive, zstdFrameHeaderError("frame content size absent"))
	case contentSizeFlag == 1:
		sizeFieldBytes = 2
	case contentSizeFlag == 2:
		sizeFieldBytes = 4
	default:
		sizeFieldBytes = 8
	}

	if pos+sizeFieldBytes > len(frame) {
		return 0, fmt.Errorf("%w: %w", errs.ErrCorruptArchive, zstdFrameHeaderError("truncated frame content size"))
	}

	var size uint64
	switch sizeFieldBytes {
	case 1:
		size = uint64(frame[pos])
	case 2:
		// A 2-byte field always has 256 added, since 1-byte already covers 0-255.
		size = uint64(binary.LittleEndian.Uint16(frame[pos:pos+2])) + 256
	case 4:
		size = uint64(binary.LittleEndian.Uint32(frame[pos : pos+4]))
	default:
		size = binary.LittleEndian.Uint64(frame[pos : pos+8])
	}

	return int(size), nil
}
