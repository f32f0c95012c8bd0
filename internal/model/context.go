package model

// ContextEntry is one classified element of a claim's @context sequence.
// Exactly one of InlineContext, RemoteReference or LocalReference.
type ContextEntry interface {
	// Value returns the entry in its JSON form
	Value() interface{}

	contextEntry()
}

// InlineContext is a context given directly as a JSON object
type InlineContext map[string]interface{}

// RemoteReference is a URL the signer is trusted to resolve on its own
// (for example a preloaded W3C vocabulary)
type RemoteReference string

// LocalReference is a filesystem path to a JSON context document
type LocalReference string

func (c InlineContext) Value() interface{} { return map[string]interface{}(c) }

func (r RemoteReference) Value() interface{} { return string(r) }

func (r LocalReference) Value() interface{} { return string(r) }

func (InlineContext) contextEntry()   {}
func (RemoteReference) contextEntry() {}
func (LocalReference) contextEntry()  {}

// ContextKind names the variant, used in logs and error messages
func ContextKind(e ContextEntry) string {
	switch e.(type) {
	case InlineContext:
		return "inline"
	case RemoteReference:
		return "remote"
	case LocalReference:
		return "local"
	default:
		return "unknown"
	}
}

// ContextValues converts classified entries back into a JSON array
func ContextValues(entries []ContextEntry) []interface{} {
	out := make([]interface{}, len(entries))
	for i, e := range entries {
		out[i] = e.Value()
	}
	return out
}
