package compress

// NoopCodec bypasses compression entirely; useful for tests and for data
// that is already incompressible.
type NoopCodec struct{}

var (
	_ Codec      = NoopCodec{}
	_ FrameSizer = NoopCodec{}
)

// NewNoopCodec creates a no-op codec.
func NewNoopCodec() NoopCodec {
	return NoopCodec{}
}

// Compress returns data unchanged.
//
// The returned slice shares the input's underlying memory; callers should
// not mutate data after calling Compress if they retain the result.
func (c NoopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged.
func (c NoopCodec) Decompress(data []byte, _ int) ([]byte, error) {
	return data, nil
}

// DecompressedSize returns len(frame): a no-op "frame" is its own size.
func (c NoopCodec) DecompressedSize(frame []byte) (int, error) {
	return len(frame), nil
}
