package archive

import (
	"fmt"
	"strings"

	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
)

// SpecSyntaxError reports a single malformed line in a spec file,
// including the (file, line, column) of the failure per spec.md §7.
type SpecSyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SpecSyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

func (e *SpecSyntaxError) Unwrap() error {
	return errs.ErrSpecSyntax
}

var blendingLiterals = map[string]format.Blending{
	"opaque":      format.BlendingOpaque,
	"transparent": format.BlendingTransparent,
	"add":         format.BlendingAdd,
	"masked":      format.BlendingMasked,
	"fade":        format.BlendingFade,
	"multiply":    format.BlendingMultiply,
	"screen":      format.BlendingScreen,
}

var shadingLiterals = map[string]format.Shading{
	"unlit":              format.ShadingUnlit,
	"lit":                format.ShadingLit,
	"subsurface":         format.ShadingSubsurface,
	"cloth":              format.ShadingCloth,
	"specularGlossiness": format.ShadingSpecularGlossiness,
}

var featureLiterals = map[string]format.Feature{
	"unsupported": format.FeatureUnsupported,
	"optional":    format.FeatureOptional,
	"required":    format.FeatureRequired,
}

// specFileResult is the parsed content of one spec file: the
// shading/blending constraints and feature flags it assigns, in the
// order their assignments appeared.
type specFileResult struct {
	shading  format.Shading
	blending format.Blending
	flags    []Flag
}

func (r *specFileResult) setFlag(name string, value format.Feature) {
	for i, f := range r.flags {
		if f.Name == name {
			r.flags[i].Value = value
			return
		}
	}
	r.flags = append(r.flags, Flag{Name: name, Value: value})
}

// parseSpecFile parses content per the grammar in spec.md §6. sourceName
// is used only to label SpecSyntaxError.File.
func parseSpecFile(sourceName, content string) (specFileResult, error) {
	result := specFileResult{
		shading:  format.ShadingInvalid,
		blending: format.BlendingInvalid,
	}

	lines := strings.Split(content, "\n")
	for i, raw := range lines {
		lineNo := i + 1

		trimmed := strings.TrimLeft(raw, " \t")
		leadingWS := len(raw) - len(trimmed)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		eq := strings.IndexByte(trimmed, '=')
		if eq < 0 {
			return result, &SpecSyntaxError{File: sourceName, Line: lineNo, Col: leadingWS + 1, Msg: "expected 'ident = value'"}
		}

		ident := strings.TrimRight(trimmed[:eq], " \t")
		if !isValidIdent(ident) {
			return result, &SpecSyntaxError{File: sourceName, Line: lineNo, Col: leadingWS + 1, Msg: fmt.Sprintf("invalid identifier %q", ident)}
		}

		rest := trimmed[eq+1:]
		valueStart := len(rest) - len(strings.TrimLeft(rest, " \t"))
		valueField := strings.TrimLeft(rest, " \t")

		value, consumed, ok := splitFirstToken(valueField)
		if !ok {
			return result, &SpecSyntaxError{File: sourceName, Line: lineNo, Col: leadingWS + eq + 2 + valueStart, Msg: "missing value"}
		}

		trailing := strings.TrimLeft(valueField[consumed:], " \t")
		if trailing != "" {
			col := leadingWS + eq + 2 + valueStart + len(valueField[:consumed])
			return result, &SpecSyntaxError{File: sourceName, Line: lineNo, Col: col, Msg: fmt.Sprintf("unexpected trailing text %q", trailing)}
		}

		valueCol := leadingWS + eq + 2 + valueStart

		switch ident {
		case "BlendingMode":
			b, ok := blendingLiterals[value]
			if !ok {
				return result, &SpecSyntaxError{File: sourceName, Line: lineNo, Col: valueCol, Msg: fmt.Sprintf("invalid blending literal %q", value)}
			}
			result.blending = b

		case "ShadingModel":
			s, ok := shadingLiterals[value]
			if !ok {
				return result, &SpecSyntaxError{File: sourceName, Line: lineNo, Col: valueCol, Msg: fmt.Sprintf("invalid shading literal %q", value)}
			}
			result.shading = s

		default:
			f, ok := featureLiterals[value]
			if !ok {
				return result, &SpecSyntaxError{File: sourceName, Line: lineNo, Col: valueCol, Msg: fmt.Sprintf("invalid feature literal %q", value)}
			}
			result.setFlag(ident, f)
		}
	}

	return result, nil
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		isAlpha := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if i > 0 && !isAlpha && !isDigit {
			return false
		}
	}

	return true
}

// splitFirstToken returns the leading non-whitespace token of s and how
// many bytes of s it consumed.
func splitFirstToken(s string) (token string, consumed int, ok bool) {
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return "", 0, false
	}

	return s[:end], end, true
}
