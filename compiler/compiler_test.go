package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
)

func TestNopCompiler_PadsToWordBoundary(t *testing.T) {
	out, err := NopCompiler{}.Compile([]byte{1, 2, 3}, format.StageVertex, 1)
	require.NoError(t, err)
	assert.Len(t, out, 4)
	assert.Equal(t, []byte{1, 2, 3, 0}, out)
}

func TestFailingCompiler(t *testing.T) {
	_, err := FailingCompiler{Diagnostic: "bad input"}.Compile(nil, format.StageFragment, 1)
	require.ErrorIs(t, err, errs.ErrCompileFailed)
	assert.Contains(t, err.Error(), "bad input")
}
