package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalo/filament/format"
)

func allCodecs() map[string]Codec {
	return map[string]Codec{
		"noop": NewNoopCodec(),
		"zstd": NewZstdCodec(),
		"s2":   NewS2Codec(),
		"lz4":  NewLZ4Codec(),
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")

	for name, codec := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed, len(payload))
			require.NoError(t, err)
			assert.Equal(t, payload, decompressed)
		})
	}
}

func TestCodec_RoundTrip_Empty(t *testing.T) {
	for name, codec := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed, 0)
			require.NoError(t, err)
			assert.Empty(t, decompressed)
		})
	}
}

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		typ     format.CompressionType
		want    Codec
		wantErr bool
	}{
		{format.CompressionNone, NewNoopCodec(), false},
		{format.CompressionZstd, NewZstdCodec(), false},
		{format.CompressionS2, NewS2Codec(), false},
		{format.CompressionLZ4, NewLZ4Codec(), false},
		{format.CompressionType(0xFF), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got, err := CreateCodec(tt.typ)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestZstdCodec_DecompressedSize(t *testing.T) {
	codec := NewZstdCodec()
	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte(i)
	}

	compressed, err := codec.Compress(payload)
	require.NoError(t, err)

	size, err := codec.DecompressedSize(compressed)
	require.NoError(t, err)
	assert.Equal(t, len(payload), size)
}

func TestZstdCodec_DecompressedSize_BadMagic(t *testing.T) {
	codec := NewZstdCodec()
	_, err := codec.DecompressedSize([]byte{0, 1, 2, 3, 4})
	require.Error(t, err)
}

func TestNoopCodec_DecompressedSize(t *testing.T) {
	codec := NewNoopCodec()
	size, err := codec.DecompressedSize([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, size)
}
