// Package dict implements the two append-only, index-addressed
// dictionaries shared by material packages: StringDictionary (C3) for
// text-shader line dedup, and BlobDictionary (C2) for content-addressed
// SPIR-V blob dedup.
package dict

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zalo/filament/errs"
)

// MaxLines is the hard cap on a StringDictionary's size: line indices are
// serialized as 16-bit values (spec §3).
const MaxLines = math.MaxUint16

// StringDictionary is an ordered, append-only collection of short strings
// (text lines), addressed by 16-bit index, with O(1) add-if-absent via a
// side map.
type StringDictionary struct {
	lines  []string
	byLine map[string]uint16
}

// NewStringDictionary creates an empty StringDictionary.
func NewStringDictionary() *StringDictionary {
	return &StringDictionary{
		byLine: make(map[string]uint16),
	}
}

// Add returns the index of line, appending it if not already present.
// Fails with errs.ErrTooManyLines if the dictionary already holds
// MaxLines entries, so the insert would require an index of MaxLines or
// more.
func (d *StringDictionary) Add(line string) (uint16, error) {
	if idx, ok := d.byLine[line]; ok {
		return idx, nil
	}

	if len(d.lines) >= MaxLines {
		return 0, fmt.Errorf("%w: cannot add line, dictionary already holds %d entries", errs.ErrTooManyLines, len(d.lines))
	}

	idx := uint16(len(d.lines))
	d.lines = append(d.lines, line)
	d.byLine[line] = idx

	return idx, nil
}

// Get returns the line at idx.
func (d *StringDictionary) Get(idx uint16) (string, error) {
	if int(idx) >= len(d.lines) {
		return "", fmt.Errorf("%w: index %d, size %d", errs.ErrLineIndexOutOfRange, idx, len(d.lines))
	}

	return d.lines[idx], nil
}

// Size returns the number of lines in the dictionary.
func (d *StringDictionary) Size() int {
	return len(d.lines)
}

// Encode serializes the dictionary as a DictionaryText chunk payload:
// count:u32 LE followed by count null-terminated UTF-8 strings, in index
// order.
func (d *StringDictionary) Encode() []byte {
	size := 4
	for _, line := range d.lines {
		size += len(line) + 1
	}

	out := make([]byte, 4, size)
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(d.lines)))

	for _, line := range d.lines {
		out = append(out, line...)
		out = append(out, 0)
	}

	return out
}

// DecodeStringDictionary parses a DictionaryText chunk payload.
func DecodeStringDictionary(payload []byte) (*StringDictionary, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("%w: string dictionary payload shorter than count field", errs.ErrMalformedPackage)
	}

	count := binary.LittleEndian.Uint32(payload[0:4])
	d := &StringDictionary{
		lines:  make([]string, 0, count),
		byLine: make(map[string]uint16, count),
	}

	pos := 4
	for i := uint32(0); i < count; i++ {
		start := pos
		for pos < len(payload) && payload[pos] != 0 {
			pos++
		}
		if pos >= len(payload) {
			return nil, fmt.Errorf("%w: string dictionary entry %d missing null terminator", errs.ErrMalformedPackage, i)
		}

		line := string(payload[start:pos])
		pos++ // skip the terminator

		d.lines = append(d.lines, line)
		if _, exists := d.byLine[line]; !exists {
			d.byLine[line] = uint16(len(d.lines) - 1)
		}
	}

	return d, nil
}
