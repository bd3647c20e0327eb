package archive

import (
	"fmt"

	"github.com/zalo/filament/compress"
	"github.com/zalo/filament/endian"
	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
	"github.com/zalo/filament/internal/options"
	"github.com/zalo/filament/internal/pool"
)

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithEndian selects the integer endianness used for the serialized
// archive's header, spec, and flag records. Defaults to little-endian.
func WithEndian(engine endian.EndianEngine) WriterOption {
	return options.NoError(func(w *Writer) { w.engine = engine })
}

// WithCodec selects the compression codec used to compress the final
// serialized archive. Defaults to Zstd at its best-compression level,
// per spec.md §4.8 ("Compress the whole buffer ... at maximum level").
func WithCodec(codec compress.Codec) WriterOption {
	return options.NoError(func(w *Writer) { w.codec = codec })
}

type writerEntry struct {
	shading      format.Shading
	blending     format.Blending
	flags        []Flag
	packageBytes []byte
}

// Writer accumulates materials (C8) and serializes them into a single
// compressed archive buffer that Reader can load.
type Writer struct {
	engine  endian.EndianEngine
	codec   compress.Codec
	entries []writerEntry
}

// NewWriter creates an empty Writer.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		engine: endian.GetLittleEndianEngine(),
		codec:  compress.NewZstdCodecLevel(compress.ZstdLevelBest),
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// AddMaterial appends one material entry. specFile is parsed per the
// grammar in spec.md §6 to derive the entry's shading model, blending
// mode, and feature flags; an empty specFile leaves shading and blending
// unconstrained with no flags.
func (w *Writer) AddMaterial(name string, packageBytes []byte, specFile string) error {
	parsed, err := parseSpecFile(name, specFile)
	if err != nil {
		return err
	}

	w.entries = append(w.entries, writerEntry{
		shading:      parsed.shading,
		blending:     parsed.blending,
		flags:        parsed.flags,
		packageBytes: packageBytes,
	})

	return nil
}

// Serialize lays out every accumulated material as a single buffer per
// the binary layout in §6, then compresses it with the configured
// codec.
//
// The uncompressed layout is assembled into a pooled scratch buffer,
// then copied into one exact-size allocation before compression, the
// same pooled-scratch-then-final-allocation shape as the teacher's
// TextEncoder.Finish.
func (w *Writer) Serialize() ([]byte, error) {
	specsOffset := uint64(headerSize)
	specsRegionSize := len(w.entries) * specEntrySize
	flagsOffset := uint64(alignUp8(int(specsOffset) + specsRegionSize))

	totalFlags := 0
	for _, e := range w.entries {
		totalFlags += len(e.flags)
	}
	flagsRegionSize := totalFlags * flagEntrySize
	namesOffset := flagsOffset + uint64(flagsRegionSize)

	var names []byte
	flagRecords := make([]flagEntry, 0, totalFlags)
	entryFlagsOffset := make([]uint64, len(w.entries))
	cursor := 0
	for i, e := range w.entries {
		entryFlagsOffset[i] = flagsOffset + uint64(cursor)*flagEntrySize
		for _, f := range e.flags {
			flagRecords = append(flagRecords, flagEntry{
				nameOffset: namesOffset + uint64(len(names)),
				value:      uint64(f.Value),
			})
			names = append(names, f.Name...)
			names = append(names, 0)
			cursor++
		}
	}

	packagesOffset := namesOffset + uint64(len(names))
	entryPackageOffset := make([]uint64, len(w.entries))
	var packages []byte
	for i, e := range w.entries {
		entryPackageOffset[i] = packagesOffset + uint64(len(packages))
		packages = append(packages, e.packageBytes...)
	}

	scratch := pool.GetArchiveBuffer()
	defer pool.PutArchiveBuffer(scratch)

	scratch.MustWrite(appendHeader(nil, readableArchiveHeader{
		version:     0,
		specsCount:  uint32(len(w.entries)),
		specsOffset: specsOffset,
	}, w.engine))

	for i, e := range w.entries {
		scratch.MustWrite(appendSpecEntry(nil, specEntry{
			shading:          e.shading,
			blending:         e.blending,
			flagsCount:       uint32(len(e.flags)),
			flagsOffset:      entryFlagsOffset[i],
			packageByteCount: uint64(len(e.packageBytes)),
			packageOffset:    entryPackageOffset[i],
		}, w.engine))
	}

	if pad := int(flagsOffset) - scratch.Len(); pad > 0 {
		scratch.MustWrite(make([]byte, pad))
	}

	for _, fr := range flagRecords {
		scratch.MustWrite(appendFlagEntry(nil, fr, w.engine))
	}

	scratch.MustWrite(names)
	scratch.MustWrite(packages)

	if uint64(scratch.Len()) != packagesOffset+uint64(len(packages)) {
		return nil, fmt.Errorf("%w: computed archive size does not match written size", errs.ErrAlignmentAssertion)
	}

	buf := make([]byte, scratch.Len())
	copy(buf, scratch.Bytes())

	compressed, err := w.codec.Compress(buf)
	if err != nil {
		return nil, fmt.Errorf("filament/archive: compressing archive: %w", err)
	}

	return compressed, nil
}
