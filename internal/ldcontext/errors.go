package ldcontext

import "fmt"

// ContextLoadError reports a local context file that could not be opened or read
type ContextLoadError struct {
	Path string
	Err  error
}

func (e *ContextLoadError) Error() string {
	return fmt.Sprintf("load context %q: %v", e.Path, e.Err)
}

func (e *ContextLoadError) Unwrap() error { return e.Err }

// ContextParseError reports a local context file whose content is not a JSON object
type ContextParseError struct {
	Path string
	Err  error
}

func (e *ContextParseError) Error() string {
	return fmt.Sprintf("parse context %q: %v", e.Path, e.Err)
}

func (e *ContextParseError) Unwrap() error { return e.Err }

// InvalidContextError reports a claim whose @context is missing or malformed
type InvalidContextError struct {
	Index  int // Entry index, -1 when the whole value is at fault
	Reason string
}

func (e *InvalidContextError) Error() string {
	if e.Index < 0 {
		return "invalid @context: " + e.Reason
	}
	return fmt.Sprintf("invalid @context entry %d: %s", e.Index, e.Reason)
}
