package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalo/filament/compress"
	"github.com/zalo/filament/engine"
	"github.com/zalo/filament/format"
)

// Scenario 4 (spec §8): archive round-trip.
func TestArchive_RoundTrip(t *testing.T) {
	w, err := NewWriter(WithCodec(compress.NewNoopCodec()))
	require.NoError(t, err)

	require.NoError(t, w.AddMaterial("A", []byte("package-A-bytes"), "ShadingModel = lit\nBlendingMode = opaque\nhasBaseColorMap = required\n"))
	require.NoError(t, w.AddMaterial("B", []byte("package-B-bytes"), ""))

	compressed, err := w.Serialize()
	require.NoError(t, err)

	r, err := Load(compressed, compress.NewNoopCodec(), engine.NopBuilder{})
	require.NoError(t, err)

	specs := r.Specs()
	require.Len(t, specs, 2)

	assert.Equal(t, format.ShadingLit, specs[0].Shading)
	assert.Equal(t, format.BlendingOpaque, specs[0].Blending)
	require.Len(t, specs[0].Flags, 1)
	assert.Equal(t, "hasBaseColorMap", specs[0].Flags[0].Name)
	assert.Equal(t, format.FeatureRequired, specs[0].Flags[0].Value)
	assert.Equal(t, []byte("package-A-bytes"), specs[0].Package)

	assert.Equal(t, format.ShadingInvalid, specs[1].Shading)
	assert.Equal(t, []byte("package-B-bytes"), specs[1].Package)
}

func TestArchive_RoundTrip_Zstd(t *testing.T) {
	w, err := NewWriter()
	require.NoError(t, err)
	require.NoError(t, w.AddMaterial("A", []byte("hello world, this is a material package payload"), ""))

	compressed, err := w.Serialize()
	require.NoError(t, err)

	r, err := Load(compressed, compress.NewZstdCodecLevel(compress.ZstdLevelBest), engine.NopBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world, this is a material package payload"), r.Specs()[0].Package)
}

func TestArchive_Build_CachesHandle(t *testing.T) {
	w, err := NewWriter(WithCodec(compress.NewNoopCodec()))
	require.NoError(t, err)
	require.NoError(t, w.AddMaterial("A", []byte("pkg"), ""))

	compressed, err := w.Serialize()
	require.NoError(t, err)

	r, err := Load(compressed, compress.NewNoopCodec(), engine.NopBuilder{})
	require.NoError(t, err)

	h1, err := r.Build(0)
	require.NoError(t, err)
	h2, err := r.Build(0)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestArchive_Load_BadMagic(t *testing.T) {
	_, err := Load([]byte("NOPE: not an archive, but long enough to hold a full header"), compress.NewNoopCodec(), engine.NopBuilder{})
	require.Error(t, err)
}

func TestArchive_Load_RequiresFrameSizer(t *testing.T) {
	_, err := Load([]byte("data"), compress.NewS2Codec(), engine.NopBuilder{})
	require.Error(t, err)
}

func TestArchive_Empty(t *testing.T) {
	w, err := NewWriter(WithCodec(compress.NewNoopCodec()))
	require.NoError(t, err)

	compressed, err := w.Serialize()
	require.NoError(t, err)

	r, err := Load(compressed, compress.NewNoopCodec(), engine.NopBuilder{})
	require.NoError(t, err)
	assert.Empty(t, r.Specs())
}
