package material

import (
	"encoding/binary"
	"fmt"

	"github.com/zalo/filament/errs"
)

// spirvEntrySize is the size in bytes of one SPIR-V record entry:
// model, variant, stage (u8 each) plus a u32 blob index. There is no
// secondary tail region, unlike the text chunk.
const spirvEntrySize = 1 + 1 + 1 + 4

// SpirvRecord is one decoded (or to-be-encoded) SPIR-V shader record: a
// key and the index of its bytecode blob within the associated
// BlobDictionary.
type SpirvRecord struct {
	Key       ShaderKey
	BlobIndex uint32
}

// DecodeSpirvShaderChunk decodes a MaterialSpirv chunk payload into
// records. Blob indices are returned as-is; validating them against a
// BlobDictionary's size is the caller's responsibility (MaterialPackage
// does this as part of well-formedness validation).
func DecodeSpirvShaderChunk(payload []byte) ([]SpirvRecord, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("%w: spirv shader chunk shorter than record_count field", errs.ErrMalformedPackage)
	}

	count := binary.LittleEndian.Uint64(payload[0:8])
	end := 8 + int(count)*spirvEntrySize
	if end > len(payload) {
		return nil, fmt.Errorf("%w: spirv shader chunk entry region runs past payload end", errs.ErrMalformedPackage)
	}

	records := make([]SpirvRecord, 0, count)
	for i := uint64(0); i < count; i++ {
		off := 8 + int(i)*spirvEntrySize
		records = append(records, SpirvRecord{
			Key: ShaderKey{
				Model:   payload[off],
				Variant: payload[off+1],
				Stage:   payload[off+2],
			},
			BlobIndex: binary.LittleEndian.Uint32(payload[off+3 : off+7]),
		})
	}

	return records, nil
}

// EncodeSpirvShaderChunk encodes records as a MaterialSpirv chunk
// payload.
func EncodeSpirvShaderChunk(records []SpirvRecord) []byte {
	out := make([]byte, 8+len(records)*spirvEntrySize)
	binary.LittleEndian.PutUint64(out[0:8], uint64(len(records)))

	for i, rec := range records {
		off := 8 + i*spirvEntrySize
		out[off] = rec.Key.Model
		out[off+1] = rec.Key.Variant
		out[off+2] = rec.Key.Stage
		binary.LittleEndian.PutUint32(out[off+3:off+7], rec.BlobIndex)
	}

	return out
}
