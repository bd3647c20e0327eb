// Package archive implements the ubershader archive codec: zero-copy-style
// loading of a packed, offset-referenced archive buffer (ArchiveReader,
// C7), the inverse serialization (ArchiveWriter, C8), and the ordered
// matching algorithm that selects a material for a mesh's requirements
// (ArchiveMatcher, C9).
package archive

import (
	"fmt"

	"github.com/zalo/filament/endian"
	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
)

// magic is the 4-byte tag every archive buffer begins with, read
// big-endian-of-bytes so it reads as the literal string "UBER" regardless
// of the configured integer endianness.
var magic = [4]byte{'U', 'B', 'E', 'R'}

const (
	// headerSize is the fixed, 8-byte-aligned size of the ReadableArchive
	// header: magic(4) + version(4) + specs_count(4) + specs_offset(8) +
	// reserved(12) = 32 bytes.
	headerSize = 32

	// specEntrySize is the size of one ArchiveSpec record: shading(4) +
	// blending(4) + flags_count(4) + flags_offset(8) +
	// package_byte_count(8) + package_offset(8) = 36 bytes.
	specEntrySize = 36

	// flagEntrySize is the size of one ArchiveFlag record: name_offset(8)
	// + value(8) = 16 bytes.
	flagEntrySize = 16
)

// readableArchiveHeader is the on-disk ReadableArchive header (§6).
type readableArchiveHeader struct {
	version     uint32
	specsCount  uint32
	specsOffset uint64
}

func decodeHeader(buf []byte, engine endian.EndianEngine) (readableArchiveHeader, error) {
	if len(buf) < headerSize {
		return readableArchiveHeader{}, fmt.Errorf("%w: buffer shorter than archive header", errs.ErrCorruptArchive)
	}

	if buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return readableArchiveHeader{}, fmt.Errorf("%w: bad magic", errs.ErrCorruptArchive)
	}

	h := readableArchiveHeader{
		version:     engine.Uint32(buf[4:8]),
		specsCount:  engine.Uint32(buf[8:12]),
		specsOffset: engine.Uint64(buf[12:20]),
	}

	if h.specsOffset%8 != 0 {
		return readableArchiveHeader{}, fmt.Errorf("%w: specs_offset %d is not 8-byte aligned", errs.ErrAlignmentAssertion, h.specsOffset)
	}

	return h, nil
}

func appendHeader(dst []byte, h readableArchiveHeader, engine endian.EndianEngine) []byte {
	var buf [headerSize]byte
	copy(buf[0:4], magic[:])
	engine.PutUint32(buf[4:8], h.version)
	engine.PutUint32(buf[8:12], h.specsCount)
	engine.PutUint64(buf[12:20], h.specsOffset)
	// buf[20:32] stays zero: reserved, keeps headerSize a multiple of 8.

	return append(dst, buf[:]...)
}

// specEntry is the on-disk ArchiveSpec record (§6).
type specEntry struct {
	shading          format.Shading
	blending         format.Blending
	flagsCount       uint32
	flagsOffset      uint64
	packageByteCount uint64
	packageOffset    uint64
}

func decodeSpecEntry(buf []byte, engine endian.EndianEngine) specEntry {
	return specEntry{
		shading:          format.Shading(engine.Uint32(buf[0:4])),
		blending:         format.Blending(engine.Uint32(buf[4:8])),
		flagsCount:       engine.Uint32(buf[8:12]),
		flagsOffset:      engine.Uint64(buf[12:20]),
		packageByteCount: engine.Uint64(buf[20:28]),
		packageOffset:    engine.Uint64(buf[28:36]),
	}
}

func appendSpecEntry(dst []byte, e specEntry, engine endian.EndianEngine) []byte {
	var buf [specEntrySize]byte
	engine.PutUint32(buf[0:4], uint32(e.shading))
	engine.PutUint32(buf[4:8], uint32(e.blending))
	engine.PutUint32(buf[8:12], e.flagsCount)
	engine.PutUint64(buf[12:20], e.flagsOffset)
	engine.PutUint64(buf[20:28], e.packageByteCount)
	engine.PutUint64(buf[28:36], e.packageOffset)

	return append(dst, buf[:]...)
}

// flagEntry is the on-disk ArchiveFlag record (§6).
type flagEntry struct {
	nameOffset uint64
	value      uint64
}

func decodeFlagEntry(buf []byte, engine endian.EndianEngine) flagEntry {
	return flagEntry{
		nameOffset: engine.Uint64(buf[0:8]),
		value:      engine.Uint64(buf[8:16]),
	}
}

func appendFlagEntry(dst []byte, e flagEntry, engine endian.EndianEngine) []byte {
	var buf [flagEntrySize]byte
	engine.PutUint64(buf[0:8], e.nameOffset)
	engine.PutUint64(buf[8:16], e.value)

	return append(dst, buf[:]...)
}

func alignUp8(n int) int {
	if rem := n % 8; rem != 0 {
		return n + (8 - rem)
	}

	return n
}
