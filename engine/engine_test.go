package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopBuilder_ReturnsBytesAsHandle(t *testing.T) {
	handle, err := NopBuilder{}.BuildMaterial([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, handle)
}
