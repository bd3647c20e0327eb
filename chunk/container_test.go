package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalo/filament/format"
)

func buildStream(t *testing.T, chunks map[format.ChunkTag][]byte, order []format.ChunkTag) []byte {
	t.Helper()

	var buf []byte
	for _, tag := range order {
		buf = AppendChunk(buf, tag, chunks[tag])
	}

	return buf
}

func TestContainer_ParseAndLookup(t *testing.T) {
	order := []format.ChunkTag{format.TagDictionaryText, format.TagMaterialGlsl}
	payloads := map[format.ChunkTag][]byte{
		format.TagDictionaryText: {0x01, 0x02, 0x03},
		format.TagMaterialGlsl:   {0x10, 0x20},
	}
	buf := buildStream(t, payloads, order)

	c, err := Parse(buf)
	require.NoError(t, err)

	assert.True(t, c.Has(format.TagDictionaryText))
	assert.True(t, c.Has(format.TagMaterialGlsl))
	assert.False(t, c.Has(format.TagMaterialSpirv))

	got, err := c.Start(format.TagDictionaryText)
	require.NoError(t, err)
	assert.Equal(t, payloads[format.TagDictionaryText], got)

	got, err = c.Start(format.TagMaterialGlsl)
	require.NoError(t, err)
	assert.Equal(t, payloads[format.TagMaterialGlsl], got)

	assert.Equal(t, order, c.Tags())
}

func TestContainer_UnknownTag(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)

	_, err = c.Start(format.TagMaterialGlsl)
	require.Error(t, err)

	_, err = c.End(format.TagMaterialGlsl)
	require.Error(t, err)
}

func TestContainer_TruncatedHeader(t *testing.T) {
	_, err := Parse([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}

func TestContainer_SizePastBufferEnd(t *testing.T) {
	buf := AppendChunk(nil, format.TagMaterialGlsl, []byte{1, 2, 3})
	truncated := buf[:len(buf)-1]

	_, err := Parse(truncated)
	require.Error(t, err)
}

func TestContainer_RawIncludesHeader(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC}
	buf := AppendChunk(nil, format.TagMaterialSpirv, payload)

	c, err := Parse(buf)
	require.NoError(t, err)

	raw, err := c.Raw(format.TagMaterialSpirv)
	require.NoError(t, err)
	assert.Equal(t, buf, raw)
}

func TestContainer_PassthroughOrderPreserved(t *testing.T) {
	unknownTag := format.ChunkTag(0xDEADBEEF01020304)
	order := []format.ChunkTag{format.TagDictionaryText, unknownTag, format.TagMaterialGlsl}
	payloads := map[format.ChunkTag][]byte{
		format.TagDictionaryText: {0x01},
		unknownTag:               {0x01, 0x02, 0x03},
		format.TagMaterialGlsl:   {0x10},
	}
	buf := buildStream(t, payloads, order)

	c, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, order, c.Tags())

	raw, err := c.Raw(unknownTag)
	require.NoError(t, err)
	assert.Equal(t, AppendChunk(nil, unknownTag, payloads[unknownTag]), raw)
}
