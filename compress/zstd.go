package compress

import "fmt"

// ZstdLevel selects a Zstandard compression effort/ratio trade-off,
// independent of the underlying library's own level type.
type ZstdLevel int

const (
	// ZstdLevelDefault favors speed; used for per-blob dictionary entries
	// that are decompressed often.
	ZstdLevelDefault ZstdLevel = iota
	// ZstdLevelBest favors ratio; spec §4.8 requires the serialized
	// archive itself to be compressed "at maximum level".
	ZstdLevelBest
)

// ZstdCodec provides Zstandard compression. It is the reference compressor
// for the ubershader archive transport format (spec §6) and doubles as the
// default BlobDictionary (SMOL-V-style) blob compressor: excellent ratio,
// and — the only real compressor here that can — able to report a frame's
// decompressed size from its header alone via DecompressedSize, which is
// what lets ArchiveReader size its buffer before decompressing.
type ZstdCodec struct {
	level ZstdLevel
}

var (
	_ Codec      = ZstdCodec{}
	_ FrameSizer = ZstdCodec{}
)

// NewZstdCodec creates a Zstd codec at the default (speed-favoring) level.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{level: ZstdLevelDefault}
}

// NewZstdCodecLevel creates a Zstd codec at the given level.
func NewZstdCodecLevel(level ZstdLevel) ZstdCodec {
	return ZstdCodec{level: level}
}

// zstd frame constants, per RFC 8878 §3.1.1.
const (
	zstdMagicNumber  = 0xFD2FB528
	zstdMagicNumSize = 4
)

func zstdFrameHeaderError(reason string) error {
	return fmt.Errorf("filament/compress: zstd frame header: %s", reason)
}
