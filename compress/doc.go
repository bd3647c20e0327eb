// Package compress implements the byte-level compression codec that the
// material package and archive formats treat as an external collaborator
// (spec §1: "the generic byte-level compression codec, exposed as
// compress(bytes) → bytes and decompress(bytes, expected_size) → bytes").
//
// # Two call shapes
//
// Most callers know the uncompressed size up front (a BlobDictionary entry
// records it alongside the compressed size) and use Codec.Decompress with
// that size as a hint/bound. The archive format does not: a compressed
// archive is a single opaque blob, so ArchiveReader must first ask the
// codec how large the decompressed frame will be before it can allocate
// an 8-byte-aligned buffer to decompress into. Codecs that support this
// (Zstd, via its frame header, and None, whose output is its input)
// implement FrameSizer; codecs that don't
// (LZ4's block API, S2) are only usable for the dictionary path, where the
// size is always known.
//
// # Supported algorithms
//
//   - None: no compression, used for testing and already-incompressible
//     data; a trivial FrameSizer.
//   - Zstd (github.com/klauspost/compress/zstd): best ratio, the reference
//     archive compressor, and a FrameSizer.
//   - S2 (github.com/klauspost/compress/s2): balanced speed/ratio, block API.
//   - LZ4 (github.com/pierrec/lz4/v4): fast decompression, block API.
package compress
