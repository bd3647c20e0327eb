package material

import (
	"fmt"

	"github.com/zalo/filament/chunk"
	"github.com/zalo/filament/compress"
	"github.com/zalo/filament/dict"
	"github.com/zalo/filament/errs"
	"github.com/zalo/filament/format"
)

// Backend identifies which shader backend a material package targets.
// A package holds records for exactly one backend.
type Backend int

const (
	BackendSpirv Backend = iota
	BackendGlsl
	BackendMetal
)

// MaterialPackage wraps a parsed ChunkContainer together with its
// decoded dictionary and shader records, and enforces the
// well-formedness invariants of §3: every index resolves, and no two
// records share a ShaderKey.
type MaterialPackage struct {
	Container *chunk.Container
	Backend   Backend
	DictTag   format.ChunkTag
	MatTag    format.ChunkTag

	StringDict *dict.StringDictionary // non-nil only for BackendGlsl/BackendMetal
	BlobDict   *dict.BlobDictionary   // non-nil only for BackendSpirv

	TextRecords  []TextRecord  // non-nil only for BackendGlsl/BackendMetal
	SpirvRecords []SpirvRecord // non-nil only for BackendSpirv
}

// backendOf inspects a parsed container and determines which shader
// backend it targets, per the precedence rule in §4.6: SPIR-V wins if
// present, else GLSL, else Metal.
func backendOf(c *chunk.Container) (Backend, format.ChunkTag, format.ChunkTag, error) {
	switch {
	case c.Has(format.TagMaterialSpirv):
		return BackendSpirv, format.TagDictionarySpirv, format.TagMaterialSpirv, nil
	case c.Has(format.TagMaterialGlsl):
		return BackendGlsl, format.TagDictionaryText, format.TagMaterialGlsl, nil
	case c.Has(format.TagMaterialMetal):
		return BackendMetal, format.TagDictionaryText, format.TagMaterialMetal, nil
	default:
		return 0, 0, 0, errs.ErrUnsupportedBackend
	}
}

// ParsePackage parses buf as a material package: a ChunkContainer whose
// shader backend is detected from the chunks present, with its
// dictionary and material chunks decoded and validated. codec is used
// to decompress a DictionarySpirv chunk, if present; it is ignored for
// text backends.
func ParsePackage(buf []byte, codec compress.Codec) (*MaterialPackage, error) {
	c, err := chunk.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedPackage, err)
	}

	backend, dictTag, matTag, err := backendOf(c)
	if err != nil {
		return nil, err
	}

	p := &MaterialPackage{
		Container: c,
		Backend:   backend,
		DictTag:   dictTag,
		MatTag:    matTag,
	}

	matPayload, err := c.Start(matTag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedPackage, err)
	}

	switch backend {
	case BackendSpirv:
		p.BlobDict = dict.NewBlobDictionary()
		if c.Has(dictTag) {
			dictPayload, err := c.Start(dictTag)
			if err != nil {
				return nil, err
			}
			dictOffset, err := c.Offset(dictTag)
			if err != nil {
				return nil, err
			}
			p.BlobDict, err = dict.DecodeBlobDictionary(dictPayload, codec, dictOffset)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrMalformedPackage, err)
			}
		}

		records, err := DecodeSpirvShaderChunk(matPayload)
		if err != nil {
			return nil, err
		}
		p.SpirvRecords = records

	case BackendGlsl, BackendMetal:
		p.StringDict = dict.NewStringDictionary()
		if c.Has(dictTag) {
			dictPayload, err := c.Start(dictTag)
			if err != nil {
				return nil, err
			}
			p.StringDict, err = dict.DecodeStringDictionary(dictPayload)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrMalformedPackage, err)
			}
		}

		records, err := DecodeTextShaderChunk(matPayload, p.StringDict)
		if err != nil {
			return nil, err
		}
		p.TextRecords = records
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// validate enforces §3's well-formedness invariants: every index
// resolves within its dictionary, and no two records share a key.
func (p *MaterialPackage) validate() error {
	seen := make(map[ShaderKey]struct{})

	switch p.Backend {
	case BackendSpirv:
		for _, rec := range p.SpirvRecords {
			if _, dup := seen[rec.Key]; dup {
				return fmt.Errorf("%w: %s", errs.ErrDuplicateShaderKey, rec.Key)
			}
			seen[rec.Key] = struct{}{}

			if int(rec.BlobIndex) >= p.BlobDict.Size() {
				return fmt.Errorf("%w: record %s references blob %d, dictionary has %d", errs.ErrMalformedPackage, rec.Key, rec.BlobIndex, p.BlobDict.Size())
			}
		}

	case BackendGlsl, BackendMetal:
		for _, rec := range p.TextRecords {
			if _, dup := seen[rec.Key]; dup {
				return fmt.Errorf("%w: %s", errs.ErrDuplicateShaderKey, rec.Key)
			}
			seen[rec.Key] = struct{}{}
		}
	}

	return nil
}

// FindSpirv returns the index of the SPIR-V record matching key, or -1.
func (p *MaterialPackage) FindSpirv(key ShaderKey) int {
	for i, rec := range p.SpirvRecords {
		if rec.Key == key {
			return i
		}
	}

	return -1
}

// FindText returns the index of the text record matching key, or -1.
func (p *MaterialPackage) FindText(key ShaderKey) int {
	for i, rec := range p.TextRecords {
		if rec.Key == key {
			return i
		}
	}

	return -1
}
