package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalo/filament/chunk"
	"github.com/zalo/filament/compress"
	"github.com/zalo/filament/dict"
	"github.com/zalo/filament/format"
)

func buildGlslPackage(t *testing.T, records []TextRecord) []byte {
	t.Helper()

	dictionary, matPayload, err := EncodeTextShaderChunk(records)
	require.NoError(t, err)

	var buf []byte
	buf = chunk.AppendChunk(buf, format.TagDictionaryText, dictionary.Encode())
	buf = chunk.AppendChunk(buf, format.TagMaterialGlsl, matPayload)

	return buf
}

func buildSpirvPackage(t *testing.T, blobs [][]byte, records []SpirvRecord, codec compress.Codec) []byte {
	t.Helper()

	bd := dict.NewBlobDictionary()
	for _, blob := range blobs {
		bd.Add(blob)
	}
	dictPayload, err := bd.Encode(codec, chunk.HeaderSize)
	require.NoError(t, err)

	matPayload := EncodeSpirvShaderChunk(records)

	var buf []byte
	buf = chunk.AppendChunk(buf, format.TagDictionarySpirv, dictPayload)
	buf = chunk.AppendChunk(buf, format.TagMaterialSpirv, matPayload)

	return buf
}

func TestParsePackage_Glsl(t *testing.T) {
	records := []TextRecord{
		{Key: ShaderKey{Model: 1, Variant: 7, Stage: 0}, Text: "#version 310 es\nvoid main(){}\n"},
	}
	buf := buildGlslPackage(t, records)

	p, err := ParsePackage(buf, compress.NewNoopCodec())
	require.NoError(t, err)
	assert.Equal(t, BackendGlsl, p.Backend)
	require.Len(t, p.TextRecords, 1)
	assert.Equal(t, records[0].Text, p.TextRecords[0].Text)
}

func TestParsePackage_Spirv(t *testing.T) {
	blobs := [][]byte{{0x03, 0x02, 0x23, 0x07}}
	records := []SpirvRecord{{Key: ShaderKey{Model: 2}, BlobIndex: 0}}
	buf := buildSpirvPackage(t, blobs, records, compress.NewNoopCodec())

	p, err := ParsePackage(buf, compress.NewNoopCodec())
	require.NoError(t, err)
	assert.Equal(t, BackendSpirv, p.Backend)
	require.Len(t, p.SpirvRecords, 1)

	blob, err := p.BlobDict.Get(0)
	require.NoError(t, err)
	assert.Equal(t, blobs[0], blob)
}

func TestParsePackage_UnsupportedBackend(t *testing.T) {
	buf := chunk.AppendChunk(nil, format.TagDictionaryText, []byte{0, 0, 0, 0})

	_, err := ParsePackage(buf, compress.NewNoopCodec())
	require.Error(t, err)
}

func TestParsePackage_DuplicateShaderKey(t *testing.T) {
	records := []SpirvRecord{
		{Key: ShaderKey{Model: 1}, BlobIndex: 0},
		{Key: ShaderKey{Model: 1}, BlobIndex: 0},
	}
	buf := buildSpirvPackage(t, [][]byte{{1, 2, 3, 4}}, records, compress.NewNoopCodec())

	_, err := ParsePackage(buf, compress.NewNoopCodec())
	require.Error(t, err)
}

func TestParsePackage_DanglingBlobIndex(t *testing.T) {
	records := []SpirvRecord{{Key: ShaderKey{Model: 1}, BlobIndex: 5}}
	buf := buildSpirvPackage(t, [][]byte{{1, 2, 3, 4}}, records, compress.NewNoopCodec())

	_, err := ParsePackage(buf, compress.NewNoopCodec())
	require.Error(t, err)
}

func TestMaterialPackage_FindHelpers(t *testing.T) {
	records := []TextRecord{
		{Key: ShaderKey{Model: 1, Variant: 7, Stage: 0}, Text: "a\n"},
	}
	buf := buildGlslPackage(t, records)

	p, err := ParsePackage(buf, compress.NewNoopCodec())
	require.NoError(t, err)

	assert.Equal(t, 0, p.FindText(ShaderKey{Model: 1, Variant: 7, Stage: 0}))
	assert.Equal(t, -1, p.FindText(ShaderKey{Model: 9}))
	assert.Equal(t, -1, p.FindSpirv(ShaderKey{Model: 1}))
}
