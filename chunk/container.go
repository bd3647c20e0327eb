// Package chunk implements the (tag, size, payload) chunk stream shared by
// material packages: a flat, concatenated sequence of chunks with
// random-access lookup by tag, and order-preserving parsing so the
// rewrite path can copy unknown chunks through byte-for-byte.
package chunk

import (
	"encoding/binary"
	"fmt"

	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
)

// HeaderSize is the size in bytes of one chunk's (tag, size) header:
// 8 bytes for the tag, 4 bytes for the payload size. Exported so callers
// building a chunk stream incrementally (material.Rewriter) can predict
// a not-yet-appended chunk's payload offset for alignment purposes.
const HeaderSize = 8 + 4

// entry records one parsed chunk's position within the source buffer.
type entry struct {
	tag         format.ChunkTag
	headerStart int // offset of this chunk's (tag, size) header
	start       int // offset of this chunk's payload
	end         int // offset one past this chunk's payload
}

// Container parses a byte buffer as a stream of chunks and exposes
// random-access lookup by tag. It borrows the input buffer for its
// lifetime; all returned slices alias it.
type Container struct {
	buf     []byte
	entries []entry // in original stream order
	byTag   map[format.ChunkTag]int
}

// Parse parses buf as a concatenated chunk stream. It fails with
// errs.ErrMalformedContainer if any declared chunk size runs past the end
// of buf, or the buffer ends mid-header.
func Parse(buf []byte) (*Container, error) {
	c := &Container{
		buf:   buf,
		byTag: make(map[format.ChunkTag]int),
	}

	pos := 0
	for pos < len(buf) {
		if pos+HeaderSize > len(buf) {
			return nil, fmt.Errorf("%w: truncated chunk header at offset %d", errs.ErrMalformedContainer, pos)
		}

		tag := format.ChunkTag(binary.LittleEndian.Uint64(buf[pos : pos+8]))
		size := binary.LittleEndian.Uint32(buf[pos+8 : pos+12])

		payloadStart := pos + HeaderSize
		payloadEnd := payloadStart + int(size)
		if payloadEnd > len(buf) || payloadEnd < payloadStart {
			return nil, fmt.Errorf("%w: chunk %s declares size %d past buffer end at offset %d", errs.ErrMalformedContainer, tag, size, pos)
		}

		c.byTag[tag] = len(c.entries)
		c.entries = append(c.entries, entry{
			tag:         tag,
			headerStart: pos,
			start:       payloadStart,
			end:         payloadEnd,
		})

		pos = payloadEnd
	}

	return c, nil
}

// Has reports whether a chunk with the given tag is present.
func (c *Container) Has(tag format.ChunkTag) bool {
	_, ok := c.byTag[tag]
	return ok
}

// Start returns the payload of the chunk with the given tag.
func (c *Container) Start(tag format.ChunkTag) ([]byte, error) {
	idx, ok := c.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownChunkTag, tag)
	}

	e := c.entries[idx]
	return c.buf[e.start:e.end], nil
}

// Offset returns the absolute byte offset, within the parsed buffer, at
// which the payload of the chunk with the given tag begins. Used to
// verify alignment invariants that are defined relative to the overall
// stream rather than to the chunk's own payload (e.g. DictionarySpirv's
// 8-byte alignment, spec §4.5/§6).
func (c *Container) Offset(tag format.ChunkTag) (int, error) {
	idx, ok := c.byTag[tag]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errs.ErrUnknownChunkTag, tag)
	}

	return c.entries[idx].start, nil
}

// End returns the absolute byte offset, within the parsed buffer, one
// past the payload of the chunk with the given tag; combined with Offset
// it gives the payload's span `[Offset(tag), End(tag))`.
func (c *Container) End(tag format.ChunkTag) (int, error) {
	idx, ok := c.byTag[tag]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errs.ErrUnknownChunkTag, tag)
	}

	return c.entries[idx].end, nil
}

// Tags returns every chunk tag present, in original stream order.
func (c *Container) Tags() []format.ChunkTag {
	tags := make([]format.ChunkTag, len(c.entries))
	for i, e := range c.entries {
		tags[i] = e.tag
	}

	return tags
}

// Raw returns the full on-disk bytes of the chunk with the given tag,
// including its (tag, size) header. Used by the rewriter to copy
// untouched chunks through bit-for-bit.
func (c *Container) Raw(tag format.ChunkTag) ([]byte, error) {
	idx, ok := c.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownChunkTag, tag)
	}

	e := c.entries[idx]
	return c.buf[e.headerStart:e.end], nil
}

// AppendChunk appends one (tag, size, payload) chunk to dst and returns
// the extended slice. This is the write-side counterpart to Parse.
func AppendChunk(dst []byte, tag format.ChunkTag, payload []byte) []byte {
	var header [HeaderSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(tag))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(payload)))

	dst = append(dst, header[:]...)
	dst = append(dst, payload...)

	return dst
}
