package archive

import (
	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
)

// Matcher implements C9: selecting the first archive spec, in stored
// order, that satisfies a mesh's requirements.
type Matcher struct {
	specs []Spec
}

// NewMatcher builds a Matcher over specs, in the order ArchiveMatcher
// should consider them (normally Reader.Specs()).
func NewMatcher(specs []Spec) *Matcher {
	return &Matcher{specs: specs}
}

// Select returns the index of the first spec satisfying reqs under the
// four predicates of spec.md §4.9, or errs.ErrNoMatch if none does.
// Select is a pure function of (m.specs, reqs).
func (m *Matcher) Select(reqs Requirements) (int, error) {
	for i, spec := range m.specs {
		if suitable(spec, reqs) {
			return i, nil
		}
	}

	return -1, errs.ErrNoMatch
}

func suitable(spec Spec, reqs Requirements) bool {
	if spec.Blending != format.BlendingInvalid && spec.Blending != reqs.Blending {
		return false
	}
	if spec.Shading != format.ShadingInvalid && spec.Shading != reqs.Shading {
		return false
	}

	// Coverage: every feature the mesh uses must be OPTIONAL or REQUIRED
	// on the spec.
	for name, used := range reqs.Features {
		if !used {
			continue
		}

		value, ok := spec.Flag(name)
		if !ok || value == format.FeatureUnsupported {
			return false
		}
	}

	// Required-satisfaction: every REQUIRED flag on the spec must be
	// requested as true.
	for _, f := range spec.Flags {
		if f.Value == format.FeatureRequired && !reqs.Features[f.Name] {
			return false
		}
	}

	return true
}
