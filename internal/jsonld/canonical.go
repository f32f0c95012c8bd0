package jsonld

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/piprate/json-gold/ld"
)

// ErrEmptyDataset means canonicalization produced no RDF statements,
// usually because no @context defines the document's terms
var ErrEmptyDataset = errors.New("document produced no RDF statements")

// Canonicalize returns the URDNA2015 canonical N-Quads of doc
func Canonicalize(doc map[string]interface{}, loader ld.DocumentLoader) ([]byte, error) {
	proc := ld.NewJsonLdProcessor()

	opts := ld.NewJsonLdOptions("")
	opts.Algorithm = "URDNA2015"
	opts.Format = "application/n-quads"
	opts.ProduceGeneralizedRdf = false
	if loader != nil {
		opts.DocumentLoader = loader
	}

	input, err := plainNumbers(doc)
	if err != nil {
		return nil, err
	}

	out, err := proc.Normalize(input, opts)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	nquads, ok := out.(string)
	if !ok {
		return nil, fmt.Errorf("normalize: unexpected result type %T", out)
	}
	if nquads == "" {
		return nil, ErrEmptyDataset
	}

	return []byte(nquads), nil
}

// plainNumbers copies v with every json.Number replaced by float64,
// the only numeric form the JSON-LD processor recognises
func plainNumbers(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", t.String(), err)
		}
		return f, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			conv, err := plainNumbers(item)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			conv, err := plainNumbers(item)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	default:
		return v, nil
	}
}

// CanonicalizeJCS returns the RFC 8785 serialization of v
func CanonicalizeJCS(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("jcs: %w", err)
	}
	return out, nil
}
