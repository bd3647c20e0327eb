// Package errs centralizes the sentinel errors raised by the chunk, dict,
// material, and archive packages. Components wrap these with fmt.Errorf's
// %w verb to attach positional context (tag, offset, key) while keeping
// them matchable with errors.Is.
package errs

import "errors"

var (
	// chunk.Container

	// ErrMalformedContainer is returned when a chunk's declared size runs
	// past the end of the buffer, or the buffer ends mid-header.
	ErrMalformedContainer = errors.New("filament: malformed chunk container")
	// ErrUnknownChunkTag is returned by Container.Start/End for a tag that
	// was not present in the parsed stream.
	ErrUnknownChunkTag = errors.New("filament: unknown chunk tag")

	// dict.BlobDictionary / dict.StringDictionary

	// ErrTooManyLines is returned when a StringDictionary insert would
	// require a line index greater than the 16-bit hard cap.
	ErrTooManyLines = errors.New("filament: too many lines in string dictionary")
	// ErrBlobIndexOutOfRange is returned by BlobDictionary.Get for an
	// out-of-bounds index.
	ErrBlobIndexOutOfRange = errors.New("filament: blob index out of range")
	// ErrLineIndexOutOfRange is returned by StringDictionary.Get for an
	// out-of-bounds index.
	ErrLineIndexOutOfRange = errors.New("filament: line index out of range")
	// ErrMisalignedDictionary is returned when the zero-byte pad that
	// aligns a decoded BlobDictionary payload's content to an 8-byte
	// boundary is shorter than required or contains a non-zero byte.
	ErrMisalignedDictionary = errors.New("filament: blob dictionary payload is not 8-byte aligned")

	// material package (C4/C5/C6)

	// ErrInternalEncodingError flags a length/offset inconsistency detected
	// while re-encoding a text shader chunk; the input package is left
	// unchanged.
	ErrInternalEncodingError = errors.New("filament: internal encoding error")
	// ErrMalformedPackage is returned when a material package fails to
	// parse as a well-formed ChunkContainer, or violates a well-formedness
	// invariant (duplicate key, dangling index).
	ErrMalformedPackage = errors.New("filament: malformed material package")
	// ErrUnsupportedBackend is returned when none of MaterialSpirv,
	// MaterialGlsl, or MaterialMetal is present in the package.
	ErrUnsupportedBackend = errors.New("filament: unsupported shader backend")
	// ErrNoSuchShader is returned when a rewrite request's (model, variant,
	// stage) does not match any record in the package.
	ErrNoSuchShader = errors.New("filament: no shader record matches the requested key")
	// ErrDuplicateShaderKey is returned when a package (or a rewrite
	// operation) would produce two records with the same ShaderKey.
	ErrDuplicateShaderKey = errors.New("filament: duplicate shader key")

	// compiler package

	// ErrCompileFailed wraps a shader compiler diagnostic; the wrapped
	// message is the compiler's own output.
	ErrCompileFailed = errors.New("filament: shader compilation failed")

	// archive package (C7/C8/C9)

	// ErrCorruptArchive is returned when the compressed archive buffer
	// cannot be decompressed, or decompresses to a size the codec did not
	// predict.
	ErrCorruptArchive = errors.New("filament: corrupt archive")
	// ErrAlignmentAssertion is a fatal, implementation-bug class error: an
	// offset that the writer promised to be 8-byte aligned was not.
	ErrAlignmentAssertion = errors.New("filament: alignment assertion failed")
	// ErrNoMatch is returned by ArchiveMatcher.Select when no spec in the
	// archive satisfies the given requirements.
	ErrNoMatch = errors.New("filament: no suitable material spec")

	// archive spec-file grammar (C8)

	// ErrSpecSyntax wraps a parse failure in a spec file; use
	// archive.SpecSyntaxError for the (file, line, col, msg) detail.
	ErrSpecSyntax = errors.New("filament: spec file syntax error")
)
