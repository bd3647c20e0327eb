package dict

import (
	"encoding/binary"
	"fmt"

	"github.com/zalo/filament/compress"
	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/internal/hash"
)

// blobIndexEntrySize is the size in bytes of one (offset, compressed_size,
// uncompressed_size) index entry in a DictionarySpirv chunk payload.
const blobIndexEntrySize = 4 + 4 + 4

// BlobDictionary is an ordered, append-only collection of variable-length
// byte blobs, addressed by index. Add performs content-addressed dedup by
// default: a blob that byte-equals an existing entry returns the existing
// index instead of appending a duplicate.
type BlobDictionary struct {
	blobs      [][]byte
	byHash     map[uint64][]int // xxhash(blob) -> candidate indices, for O(1) average dedup lookup
	alignBytes int              // internal blob-region alignment (spec §4.2: 4-byte aligned)
}

// NewBlobDictionary creates an empty BlobDictionary.
func NewBlobDictionary() *BlobDictionary {
	return &BlobDictionary{
		byHash:     make(map[uint64][]int),
		alignBytes: 4,
	}
}

// Add appends data, or returns the index of an existing byte-identical
// blob. Hashing narrows the byte-equality scan to blobs sharing data's
// xxhash, turning dedup into an O(1) average-case lookup instead of an
// O(n) scan (the same trick the metric-name hash index uses).
func (d *BlobDictionary) Add(data []byte) uint32 {
	h := hash.ID(string(data))
	for _, idx := range d.byHash[h] {
		if string(d.blobs[idx]) == string(data) {
			return uint32(idx)
		}
	}

	return d.addNoDedup(data, h)
}

// AddNoDedup appends data unconditionally, bypassing the content-equality
// check. Used for raw ingest paths that want index stability independent
// of future dedup decisions.
func (d *BlobDictionary) AddNoDedup(data []byte) uint32 {
	return d.addNoDedup(data, hash.ID(string(data)))
}

func (d *BlobDictionary) addNoDedup(data []byte, h uint64) uint32 {
	idx := len(d.blobs)
	cloned := append([]byte(nil), data...)
	d.blobs = append(d.blobs, cloned)
	d.byHash[h] = append(d.byHash[h], idx)

	return uint32(idx)
}

// Get returns the blob at idx.
func (d *BlobDictionary) Get(idx uint32) ([]byte, error) {
	if int(idx) >= len(d.blobs) {
		return nil, fmt.Errorf("%w: index %d, size %d", errs.ErrBlobIndexOutOfRange, idx, len(d.blobs))
	}

	return d.blobs[idx], nil
}

// Size returns the number of blobs in the dictionary.
func (d *BlobDictionary) Size() int {
	return len(d.blobs)
}

// Encode serializes the dictionary as a DictionarySpirv chunk payload: a
// count, an index of (offset, compressed_size, uncompressed_size) triples
// (offsets absolute within the payload, past any leading alignment pad),
// then the codec-compressed blobs back to back, each padded so the next
// blob starts 4-byte aligned.
//
// payloadStart is the absolute offset, within the chunk stream the
// caller is building, at which the returned payload's first byte will
// land. When that offset isn't already 8-byte aligned, Encode prepends
// zero padding so the content decode actually parses (everything past
// the pad) starts on an 8-byte boundary, per the DictionarySpirv
// alignment invariant (spec §4.5/§6). Pass 0 for a standalone payload
// with no enclosing stream to align against.
func (d *BlobDictionary) Encode(codec compress.Codec, payloadStart int) ([]byte, error) {
	compressed := make([][]byte, len(d.blobs))
	for i, blob := range d.blobs {
		c, err := codec.Compress(blob)
		if err != nil {
			return nil, fmt.Errorf("filament/dict: compressing blob %d: %w", i, err)
		}
		compressed[i] = c
	}

	headerSize := 4 + len(d.blobs)*blobIndexEntrySize
	blobRegionStart := headerSize
	if pad := alignUp(blobRegionStart, d.alignBytes) - blobRegionStart; pad != 0 {
		// headerSize is always a multiple of 4 (4 + 12*n), so this never
		// fires in practice; kept to make the invariant explicit.
		blobRegionStart += pad
	}

	out := make([]byte, blobRegionStart)
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(d.blobs)))

	cursor := blobRegionStart
	for i, c := range compressed {
		entryOff := 4 + i*blobIndexEntrySize
		binary.LittleEndian.PutUint32(out[entryOff:entryOff+4], uint32(cursor))
		binary.LittleEndian.PutUint32(out[entryOff+4:entryOff+8], uint32(len(c)))
		binary.LittleEndian.PutUint32(out[entryOff+8:entryOff+12], uint32(len(d.blobs[i])))

		out = append(out, c...)
		cursor += len(c)

		if pad := alignUp(cursor, d.alignBytes) - cursor; pad != 0 {
			out = append(out, make([]byte, pad)...)
			cursor += pad
		}
	}

	if outerPad := alignPad(payloadStart, 8); outerPad != 0 {
		padded := make([]byte, outerPad, outerPad+len(out))
		padded = append(padded, out...)
		out = padded
	}

	return out, nil
}

// DecodeBlobDictionary parses a DictionarySpirv chunk payload, decompressing
// every blob up front. payloadStart is the absolute offset, within the
// enclosing chunk stream, at which payload begins; it must match the
// value Encode was called with so the same leading alignment pad (if
// any) can be stripped before the count field is read.
func DecodeBlobDictionary(payload []byte, codec compress.Codec, payloadStart int) (*BlobDictionary, error) {
	if pad := alignPad(payloadStart, 8); pad != 0 {
		if pad > len(payload) {
			return nil, fmt.Errorf("%w: payload shorter than the %d-byte alignment pad it requires", errs.ErrMisalignedDictionary, pad)
		}
		for _, b := range payload[:pad] {
			if b != 0 {
				return nil, fmt.Errorf("%w: non-zero byte in alignment pad", errs.ErrMisalignedDictionary)
			}
		}
		payload = payload[pad:]
	}

	if len(payload) < 4 {
		return nil, fmt.Errorf("%w: blob dictionary payload shorter than count field", errs.ErrMalformedPackage)
	}

	count := binary.LittleEndian.Uint32(payload[0:4])
	headerSize := 4 + int(count)*blobIndexEntrySize
	if headerSize > len(payload) {
		return nil, fmt.Errorf("%w: blob dictionary index table runs past payload end", errs.ErrMalformedPackage)
	}

	d := NewBlobDictionary()
	for i := uint32(0); i < count; i++ {
		entryOff := 4 + int(i)*blobIndexEntrySize
		offset := binary.LittleEndian.Uint32(payload[entryOff : entryOff+4])
		compressedSize := binary.LittleEndian.Uint32(payload[entryOff+4 : entryOff+8])
		uncompressedSize := binary.LittleEndian.Uint32(payload[entryOff+8 : entryOff+12])

		end := uint64(offset) + uint64(compressedSize)
		if end > uint64(len(payload)) {
			return nil, fmt.Errorf("%w: blob %d runs past payload end", errs.ErrMalformedPackage, i)
		}

		blob, err := codec.Decompress(payload[offset:end], int(uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("filament/dict: decompressing blob %d: %w", i, err)
		}

		d.addNoDedup(blob, hash.ID(string(blob)))
	}

	return d, nil
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}

	rem := n % align
	if rem == 0 {
		return n
	}

	return n + (align - rem)
}

// alignPad returns how many zero bytes must be appended after n bytes
// to reach the next multiple of align.
func alignPad(n, align int) int {
	return alignUp(n, align) - n
}
