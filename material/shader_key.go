// Package material implements the text and SPIR-V shader chunk codecs
// (C4, C5), the MaterialPackage wrapper that ties a chunk container to its
// dictionaries, and the PackageRewriter (C6) that replaces exactly one
// shader record while copying every other chunk through bit-for-bit.
package material

import "fmt"

// ShaderKey identifies one shader record within a material package: a
// shader model, an opaque 8-bit variant code, and a pipeline stage. Keys
// are not required to be sorted and need not be unique across backends,
// only within one material chunk.
type ShaderKey struct {
	Model   uint8
	Variant uint8
	Stage   uint8
}

func (k ShaderKey) String() string {
	return fmt.Sprintf("ShaderKey(model=%d, variant=%d, stage=%d)", k.Model, k.Variant, k.Stage)
}
