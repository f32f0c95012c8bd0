package pipeline

import (
	"bytes"
	"fmt"
	"os"

	"github.com/linkedtrust/claimsign/internal/model"
	"github.com/linkedtrust/claimsign/internal/util"
)

// InputError is an unreadable or malformed claim file
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("claim %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// LoadClaim reads a claim document from path. Numbers keep their exact
// text as json.Number.
func LoadClaim(path string) (model.ClaimDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	var doc model.ClaimDocument
	if err := util.DecodeJSON(bytes.NewReader(data), &doc); err != nil {
		return nil, &InputError{Path: path, Err: fmt.Errorf("parse JSON: %w", err)}
	}
	if doc == nil {
		return nil, &InputError{Path: path, Err: fmt.Errorf("document must be a JSON object")}
	}
	if _, ok := doc.RawContext(); !ok {
		return nil, &InputError{Path: path, Err: fmt.Errorf("document has no %s", model.ContextKey)}
	}
	return doc, nil
}
