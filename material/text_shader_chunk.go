package material

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/zalo/filament/dict"
	"github.com/zalo/filament/errs"
)

// textFixedEntrySize is the size in bytes of one fixed-size record entry
// in a MaterialGlsl/MaterialMetal chunk payload: model, variant, stage
// (u8 each) plus a u32 tail offset.
const textFixedEntrySize = 1 + 1 + 1 + 4

// TextRecord is one decoded (or to-be-encoded) text shader record: a key
// and its full reconstructed source text, newline-joined.
type TextRecord struct {
	Key  ShaderKey
	Text string
}

// DecodeTextShaderChunk decodes a MaterialGlsl/MaterialMetal chunk
// payload into records, resolving every line index against dictionary.
// Reconstructed text is the concatenation, in index order, of
// `dictionary.Get(line_indices[i]) + "\n"`.
func DecodeTextShaderChunk(payload []byte, dictionary *dict.StringDictionary) ([]TextRecord, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("%w: text shader chunk shorter than record_count field", errs.ErrMalformedPackage)
	}

	count := binary.LittleEndian.Uint64(payload[0:8])
	fixedEnd := 8 + int(count)*textFixedEntrySize
	if fixedEnd > len(payload) {
		return nil, fmt.Errorf("%w: text shader chunk fixed-entry region runs past payload end", errs.ErrMalformedPackage)
	}

	records := make([]TextRecord, 0, count)
	for i := uint64(0); i < count; i++ {
		entryOff := 8 + int(i)*textFixedEntrySize
		key := ShaderKey{
			Model:   payload[entryOff],
			Variant: payload[entryOff+1],
			Stage:   payload[entryOff+2],
		}
		tailOffset := int(binary.LittleEndian.Uint32(payload[entryOff+3 : entryOff+7]))

		text, err := decodeTextTail(payload, tailOffset, dictionary)
		if err != nil {
			return nil, fmt.Errorf("filament/material: decoding record %d (%s): %w", i, key, err)
		}

		records = append(records, TextRecord{Key: key, Text: text})
	}

	return records, nil
}

func decodeTextTail(payload []byte, tailOffset int, dictionary *dict.StringDictionary) (string, error) {
	if tailOffset < 0 || tailOffset+8 > len(payload) {
		return "", fmt.Errorf("%w: tail offset %d out of range", errs.ErrMalformedPackage, tailOffset)
	}

	lineCount := binary.LittleEndian.Uint32(payload[tailOffset+4 : tailOffset+8])
	indicesStart := tailOffset + 8
	indicesEnd := indicesStart + int(lineCount)*2
	if indicesEnd > len(payload) {
		return "", fmt.Errorf("%w: line index array runs past payload end", errs.ErrMalformedPackage)
	}

	var b strings.Builder
	for i := uint32(0); i < lineCount; i++ {
		idx := binary.LittleEndian.Uint16(payload[indicesStart+int(i)*2 : indicesStart+int(i)*2+2])
		line, err := dictionary.Get(idx)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// EncodeTextShaderChunk builds a fresh StringDictionary containing
// exactly the lines referenced by records, and encodes the corresponding
// MaterialGlsl/MaterialMetal chunk payload against it. The returned
// dictionary is not seeded from any prior dictionary: a line no longer
// referenced by any record is simply absent (see PackageRewriter's text
// rewrite scenario).
func EncodeTextShaderChunk(records []TextRecord) (*dict.StringDictionary, []byte, error) {
	dictionary := dict.NewStringDictionary()

	type tail struct {
		stringLength int
		lineIndices  []uint16
	}

	tails := make([]tail, len(records))
	for i, rec := range records {
		lines := splitLines(rec.Text)

		t := tail{lineIndices: make([]uint16, len(lines))}
		for j, line := range lines {
			idx, err := dictionary.Add(line)
			if err != nil {
				return nil, nil, fmt.Errorf("filament/material: encoding record %d (%s): %w", i, rec.Key, err)
			}
			t.lineIndices[j] = idx
			t.stringLength += len(line) + 1
		}
		tails[i] = t
	}

	fixedSize := 8 + len(records)*textFixedEntrySize
	totalSize := fixedSize
	for _, t := range tails {
		totalSize += 8 + len(t.lineIndices)*2
	}

	out := make([]byte, totalSize)
	binary.LittleEndian.PutUint64(out[0:8], uint64(len(records)))

	tailCursor := fixedSize
	for i, rec := range records {
		t := tails[i]

		entryOff := 8 + i*textFixedEntrySize
		out[entryOff] = rec.Key.Model
		out[entryOff+1] = rec.Key.Variant
		out[entryOff+2] = rec.Key.Stage
		binary.LittleEndian.PutUint32(out[entryOff+3:entryOff+7], uint32(tailCursor))

		binary.LittleEndian.PutUint32(out[tailCursor:tailCursor+4], uint32(t.stringLength))
		binary.LittleEndian.PutUint32(out[tailCursor+4:tailCursor+8], uint32(len(t.lineIndices)))
		indicesStart := tailCursor + 8
		for j, idx := range t.lineIndices {
			binary.LittleEndian.PutUint16(out[indicesStart+j*2:indicesStart+j*2+2], idx)
		}

		tailCursor += 8 + len(t.lineIndices)*2
	}

	if tailCursor != totalSize {
		return nil, nil, fmt.Errorf("%w: computed chunk size %d does not match written size %d", errs.ErrInternalEncodingError, totalSize, tailCursor)
	}

	return dictionary, out, nil
}

// splitLines splits text on '\n', dropping one trailing empty element
// produced by a final newline (the encoding convention appends a
// newline after every line, so a round-tripped text always ends in one).
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
