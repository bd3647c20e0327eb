package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec provides LZ4 block compression: fast decompression, moderate
// ratio. Used as a selectable BlobDictionary codec (SPIR-V blobs are
// always decompressed with a known size, so the block API's need for an
// exact output bound is never a problem).
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses data using an LZ4 block, via a pooled lz4.Compressor.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dstSize := lz4.CompressBlockBound(len(data))
	dst := make([]byte, dstSize)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses an LZ4 block. If expectedSize is known (the
// common case here), it is used directly; otherwise an adaptive doubling
// strategy probes for the right buffer size.
func (c LZ4Codec) Decompress(data []byte, expectedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if expectedSize > 0 {
		buf := make([]byte, expectedSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			return nil, err
		}

		return buf[:n], nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024 // 128MB safety limit

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
