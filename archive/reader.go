package archive

import (
	"fmt"

	"github.com/zalo/filament/compress"
	"github.com/zalo/filament/endian"
	"github.com/zalo/filament/engine"
	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
	"github.com/zalo/filament/internal/options"
)

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*readerConfig]

type readerConfig struct {
	engine endian.EndianEngine
}

// WithReaderEndian selects the integer endianness the reader expects in
// the decompressed archive buffer. Defaults to little-endian; must match
// whatever Writer wrote.
func WithReaderEndian(e endian.EndianEngine) ReaderOption {
	return options.NoError(func(c *readerConfig) { c.engine = e })
}

// Reader is C7: a loaded, validated archive. Specs() exposes read-only
// access to every embedded material's metadata and package bytes; Build
// lazily builds (and caches) an engine.MaterialHandle per spec index.
//
// Rather than rewriting serialized byte offsets into raw pointers (the
// source's approach, ruled out by spec.md §9's design notes), every
// accessor resolves its offsets against the owned decompressed buffer on
// load: the relocation step below happens once, eagerly, producing plain
// Go slices that already alias buf.
type Reader struct {
	buf     []byte
	specs   []Spec
	builder engine.MaterialBuilder
	cache   map[int]engine.MaterialHandle
}

// Load implements C7: ask codec for the decompressed size, decompress,
// and relocate every offset into the returned Reader's Specs.
func Load(compressed []byte, codec compress.Codec, builder engine.MaterialBuilder, opts ...ReaderOption) (*Reader, error) {
	cfg := &readerConfig{engine: endian.GetLittleEndianEngine()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	sizer, ok := codec.(compress.FrameSizer)
	if !ok {
		return nil, fmt.Errorf("%w: codec does not support asking for decompressed frame size", errs.ErrCorruptArchive)
	}

	size, err := sizer.DecompressedSize(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptArchive, err)
	}

	buf, err := codec.Decompress(compressed, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptArchive, err)
	}
	if len(buf) != size {
		return nil, fmt.Errorf("%w: decompressed %d bytes, codec predicted %d", errs.ErrCorruptArchive, len(buf), size)
	}

	specs, err := relocate(buf, cfg.engine)
	if err != nil {
		return nil, err
	}

	return &Reader{
		buf:     buf,
		specs:   specs,
		builder: builder,
		cache:   make(map[int]engine.MaterialHandle),
	}, nil
}

func relocate(buf []byte, e endian.EndianEngine) ([]Spec, error) {
	h, err := decodeHeader(buf, e)
	if err != nil {
		return nil, err
	}

	specs := make([]Spec, 0, h.specsCount)
	for i := uint32(0); i < h.specsCount; i++ {
		entryOff := int(h.specsOffset) + int(i)*specEntrySize
		if entryOff+specEntrySize > len(buf) {
			return nil, fmt.Errorf("%w: spec %d entry runs past buffer end", errs.ErrCorruptArchive, i)
		}
		se := decodeSpecEntry(buf[entryOff:entryOff+specEntrySize], e)

		if se.flagsOffset%8 != 0 {
			return nil, fmt.Errorf("%w: spec %d flags_offset %d is not 8-byte aligned", errs.ErrAlignmentAssertion, i, se.flagsOffset)
		}

		flags, err := relocateFlags(buf, se, e)
		if err != nil {
			return nil, fmt.Errorf("filament/archive: relocating spec %d: %w", i, err)
		}

		pkgStart := se.packageOffset
		pkgEnd := pkgStart + se.packageByteCount
		if pkgEnd > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: spec %d package runs past buffer end", errs.ErrCorruptArchive, i)
		}

		specs = append(specs, Spec{
			Shading:  se.shading,
			Blending: se.blending,
			Flags:    flags,
			Package:  buf[pkgStart:pkgEnd],
		})
	}

	return specs, nil
}

func relocateFlags(buf []byte, se specEntry, e endian.EndianEngine) ([]Flag, error) {
	flags := make([]Flag, 0, se.flagsCount)
	for j := uint32(0); j < se.flagsCount; j++ {
		off := int(se.flagsOffset) + int(j)*flagEntrySize
		if off+flagEntrySize > len(buf) {
			return nil, fmt.Errorf("%w: flag %d entry runs past buffer end", errs.ErrCorruptArchive, j)
		}
		fe := decodeFlagEntry(buf[off:off+flagEntrySize], e)

		name, err := readCString(buf, int(fe.nameOffset))
		if err != nil {
			return nil, err
		}

		flags = append(flags, Flag{Name: name, Value: format.Feature(fe.value)})
	}

	return flags, nil
}

func readCString(buf []byte, start int) (string, error) {
	if start < 0 || start > len(buf) {
		return "", fmt.Errorf("%w: name offset %d out of range", errs.ErrCorruptArchive, start)
	}

	end := start
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	if end >= len(buf) {
		return "", fmt.Errorf("%w: flag name missing null terminator", errs.ErrCorruptArchive)
	}

	return string(buf[start:end]), nil
}

// Specs returns every resolved spec, in archive order.
func (r *Reader) Specs() []Spec {
	return r.specs
}

// Spec returns the spec at idx.
func (r *Reader) Spec(idx int) (Spec, error) {
	if idx < 0 || idx >= len(r.specs) {
		return Spec{}, fmt.Errorf("%w: spec index %d, archive has %d specs", errs.ErrCorruptArchive, idx, len(r.specs))
	}

	return r.specs[idx], nil
}

// Build returns the engine material handle for the spec at idx,
// building (and caching) it on first use. The cache is never evicted;
// per spec.md §5, destroying it is the caller's responsibility and must
// precede freeing the Reader.
func (r *Reader) Build(idx int) (engine.MaterialHandle, error) {
	if h, ok := r.cache[idx]; ok {
		return h, nil
	}

	spec, err := r.Spec(idx)
	if err != nil {
		return nil, err
	}

	handle, err := r.builder.BuildMaterial(spec.Package)
	if err != nil {
		return nil, err
	}

	r.cache[idx] = handle

	return handle, nil
}
