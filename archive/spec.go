package archive

import (
	"github.com/zalo/filament/format"
)

// Flag is one resolved feature flag on an archive spec: a name and its
// suitability level.
type Flag struct {
	Name  string
	Value format.Feature
}

// Spec is one resolved entry of an archive: the mesh-requirement
// metadata for one embedded material package. Shading/Blending of
// format.ShadingInvalid/format.BlendingInvalid mean "unconstrained".
type Spec struct {
	Shading  format.Shading
	Blending format.Blending
	Flags    []Flag
	Package  []byte
}

// Flag looks up a flag by name, reporting whether it is present.
func (s Spec) Flag(name string) (format.Feature, bool) {
	for _, f := range s.Flags {
		if f.Name == name {
			return f.Value, true
		}
	}

	return format.FeatureUnsupported, false
}

// Requirements describes a mesh's material requirements, the input to
// ArchiveMatcher.Select.
type Requirements struct {
	Shading  format.Shading
	Blending format.Blending
	Features map[string]bool
}
