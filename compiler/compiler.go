// Package compiler defines the shader compiler front-end boundary: the
// GLSL-to-SPIR-V compile step is an external collaborator, not part of
// this module's core. PackageRewriter calls Compile only on the SPIR-V
// rewrite path; text-backend rewrites never invoke it.
package compiler

import (
	"fmt"

	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
)

// Compiler turns shader source text into a 4-byte-aligned SPIR-V word
// stream for a given pipeline stage and shader model. Implementations
// own their own diagnostics, caching, and toolchain invocation; this
// module treats Compile as an opaque, blocking function that may fail.
type Compiler interface {
	Compile(source []byte, stage format.Stage, model uint8) ([]byte, error)
}

// NopCompiler is a test double that echoes its input back unchanged,
// padded to a 4-byte boundary. It never fails.
type NopCompiler struct{}

func (NopCompiler) Compile(source []byte, _ format.Stage, _ uint8) ([]byte, error) {
	out := make([]byte, len(source))
	copy(out, source)
	if pad := (4 - len(out)%4) % 4; pad != 0 {
		out = append(out, make([]byte, pad)...)
	}

	return out, nil
}

// FailingCompiler is a test double that always fails with a fixed
// diagnostic, wrapped in errs.ErrCompileFailed.
type FailingCompiler struct {
	Diagnostic string
}

func (f FailingCompiler) Compile([]byte, format.Stage, uint8) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s", errs.ErrCompileFailed, f.Diagnostic)
}
