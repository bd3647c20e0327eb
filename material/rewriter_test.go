package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalo/filament/chunk"
	"github.com/zalo/filament/compiler"
	"github.com/zalo/filament/compress"
	"github.com/zalo/filament/dict"
	"github.com/zalo/filament/format"
)

// Scenario 1 (spec §8): text rewrite drops a dictionary line that
// becomes unreferenced.
func TestRewriter_TextRewrite_DropsUnreferencedLine(t *testing.T) {
	records := []TextRecord{
		{Key: ShaderKey{Model: 1, Variant: 7, Stage: 0}, Text: "#version 310 es\nvoid main(){}\n"},
	}
	buf := buildGlslPackage(t, records)

	r := NewRewriter(compress.NewNoopCodec(), compiler.NopCompiler{})
	out, err := r.Rewrite(buf, RewriteRequest{
		Key:       ShaderKey{Model: 1, Variant: 7, Stage: 0},
		NewSource: []byte("void main(){ gl_Position=vec4(0); }\n"),
	})
	require.NoError(t, err)

	p, err := ParsePackage(out, compress.NewNoopCodec())
	require.NoError(t, err)
	require.Len(t, p.TextRecords, 1)
	assert.Equal(t, "void main(){ gl_Position=vec4(0); }\n", p.TextRecords[0].Text)
	assert.Equal(t, 1, p.StringDict.Size())
}

// Scenario 2 (spec §8): two SPIR-V records share a blob; replacing one
// leaves the other pointing at the original.
func TestRewriter_SpirvRewrite_PreservesSharedBlob(t *testing.T) {
	sharedBlob := []byte{0x03, 0x02, 0x23, 0x07, 0xAA, 0xBB}
	records := []SpirvRecord{
		{Key: ShaderKey{Model: 2, Variant: 0, Stage: 0}, BlobIndex: 0},
		{Key: ShaderKey{Model: 2, Variant: 0, Stage: 1}, BlobIndex: 0},
	}
	buf := buildSpirvPackage(t, [][]byte{sharedBlob}, records, compress.NewNoopCodec())

	r := NewRewriter(compress.NewNoopCodec(), compiler.NopCompiler{})
	out, err := r.Rewrite(buf, RewriteRequest{
		Key:       ShaderKey{Model: 2, Variant: 0, Stage: 0},
		Stage:     format.StageVertex,
		NewSource: []byte("replacement source"),
	})
	require.NoError(t, err)

	p, err := ParsePackage(out, compress.NewNoopCodec())
	require.NoError(t, err)
	require.Equal(t, 2, p.BlobDict.Size())

	first := p.SpirvRecords[p.FindSpirv(ShaderKey{Model: 2, Variant: 0, Stage: 0})]
	second := p.SpirvRecords[p.FindSpirv(ShaderKey{Model: 2, Variant: 0, Stage: 1})]
	assert.NotEqual(t, first.BlobIndex, second.BlobIndex)

	secondBlob, err := p.BlobDict.Get(second.BlobIndex)
	require.NoError(t, err)
	assert.Equal(t, sharedBlob, secondBlob)
}

// Scenario 3 (spec §8): an unknown chunk passes through byte-for-byte.
func TestRewriter_ChunkPassthrough(t *testing.T) {
	records := []TextRecord{
		{Key: ShaderKey{Model: 1, Variant: 0, Stage: 0}, Text: "a\n"},
	}
	dictionary, matPayload, err := EncodeTextShaderChunk(records)
	require.NoError(t, err)

	unknownTag := format.ChunkTag(0xDEADBEEF01020304)
	unknownPayload := []byte{0x01, 0x02, 0x03}

	var buf []byte
	buf = chunk.AppendChunk(buf, unknownTag, unknownPayload)
	buf = chunk.AppendChunk(buf, format.TagDictionaryText, dictionary.Encode())
	buf = chunk.AppendChunk(buf, format.TagMaterialGlsl, matPayload)

	r := NewRewriter(compress.NewNoopCodec(), compiler.NopCompiler{})
	out, err := r.Rewrite(buf, RewriteRequest{
		Key:       ShaderKey{Model: 1, Variant: 0, Stage: 0},
		NewSource: []byte("b\n"),
	})
	require.NoError(t, err)

	c, err := chunk.Parse(out)
	require.NoError(t, err)

	raw, err := c.Raw(unknownTag)
	require.NoError(t, err)
	assert.Equal(t, chunk.AppendChunk(nil, unknownTag, unknownPayload), raw)
}

func TestRewriter_Idempotence(t *testing.T) {
	text := "#version 310 es\nvoid main(){}\n"
	records := []TextRecord{
		{Key: ShaderKey{Model: 1, Variant: 7, Stage: 0}, Text: text},
	}
	buf := buildGlslPackage(t, records)

	r := NewRewriter(compress.NewNoopCodec(), compiler.NopCompiler{})
	out, err := r.Rewrite(buf, RewriteRequest{
		Key:       ShaderKey{Model: 1, Variant: 7, Stage: 0},
		NewSource: []byte(text),
	})
	require.NoError(t, err)

	p, err := ParsePackage(out, compress.NewNoopCodec())
	require.NoError(t, err)
	assert.Equal(t, text, p.TextRecords[0].Text)
}

func TestRewriter_NoSuchShader(t *testing.T) {
	records := []TextRecord{
		{Key: ShaderKey{Model: 1, Variant: 0, Stage: 0}, Text: "a\n"},
	}
	buf := buildGlslPackage(t, records)

	r := NewRewriter(compress.NewNoopCodec(), compiler.NopCompiler{})
	_, err := r.Rewrite(buf, RewriteRequest{
		Key:       ShaderKey{Model: 9, Variant: 9, Stage: 9},
		NewSource: []byte("b\n"),
	})
	require.Error(t, err)
}

func TestRewriter_CompileFailure(t *testing.T) {
	records := []SpirvRecord{{Key: ShaderKey{Model: 2}, BlobIndex: 0}}
	buf := buildSpirvPackage(t, [][]byte{{1, 2, 3, 4}}, records, compress.NewNoopCodec())

	r := NewRewriter(compress.NewNoopCodec(), compiler.FailingCompiler{Diagnostic: "syntax error at line 3"})
	_, err := r.Rewrite(buf, RewriteRequest{
		Key:       ShaderKey{Model: 2},
		NewSource: []byte("broken("),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error at line 3")
}

func TestRewriter_UnsupportedBackend(t *testing.T) {
	buf := chunk.AppendChunk(nil, format.TagDictionaryText, dict.NewStringDictionary().Encode())

	r := NewRewriter(compress.NewNoopCodec(), compiler.NopCompiler{})
	_, err := r.Rewrite(buf, RewriteRequest{Key: ShaderKey{Model: 1}, NewSource: []byte("x\n")})
	require.Error(t, err)
}
