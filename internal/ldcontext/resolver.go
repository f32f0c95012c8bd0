// Package ldcontext normalizes the @context sequence of a claim before it is signed.
//
// Each entry is classified once into an inline object, a trusted remote
// reference, or a local file reference. Local references are replaced by
// the JSON object read from disk; everything else is left untouched and in
// place. The resolver never touches the network.
package ldcontext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/linkedtrust/claimsign/internal/model"
	"github.com/linkedtrust/claimsign/internal/util"
)

// Resolver classifies and resolves @context entries
type Resolver struct {
	policy  TrustPolicy
	baseDir string
	unwrap  bool
	logger  *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithBaseDir resolves relative local references against dir
func WithBaseDir(dir string) Option {
	return func(r *Resolver) { r.baseDir = dir }
}

// WithUnwrap replaces a loaded {"@context": X} document by X
func WithUnwrap(unwrap bool) Option {
	return func(r *Resolver) { r.unwrap = unwrap }
}

// WithLogger sets the logger used for per-entry debug output
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver. A nil policy means DefaultPolicy.
func NewResolver(policy TrustPolicy, opts ...Option) *Resolver {
	if policy == nil {
		policy = DefaultPolicy()
	}
	r := &Resolver{
		policy: policy,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify turns one raw @context value into its variant
func (r *Resolver) Classify(raw interface{}) (model.ContextEntry, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return model.InlineContext(v), nil
	case model.InlineContext:
		return v, nil
	case string:
		if r.policy.Trusted(v) {
			return model.RemoteReference(v), nil
		}
		return model.LocalReference(v), nil
	default:
		return nil, &InvalidContextError{Index: -1, Reason: fmt.Sprintf("entry must be an object or a string, got %T", raw)}
	}
}

// Parse classifies every entry of the document's @context
func (r *Resolver) Parse(doc model.ClaimDocument) ([]model.ContextEntry, error) {
	raw, ok := doc.RawContext()
	if !ok {
		return nil, &InvalidContextError{Index: -1, Reason: "missing"}
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, &InvalidContextError{Index: -1, Reason: fmt.Sprintf("must be an array, got %T", raw)}
	}

	entries := make([]model.ContextEntry, len(items))
	for i, item := range items {
		entry, err := r.Classify(item)
		if err != nil {
			var invalid *InvalidContextError
			if errors.As(err, &invalid) {
				invalid.Index = i
			}
			return nil, err
		}
		entries[i] = entry
	}

	return entries, nil
}

// Resolve replaces every local reference in doc's @context with the parsed
// file content. The document is only modified when all entries resolve.
func (r *Resolver) Resolve(doc model.ClaimDocument) error {
	entries, err := r.Parse(doc)
	if err != nil {
		return err
	}

	resolved, err := r.ResolveEntries(entries)
	if err != nil {
		return err
	}

	doc[model.ContextKey] = model.ContextValues(resolved)
	return nil
}

// ResolveEntries returns a new slice where local references are loaded.
// Order and length are preserved.
func (r *Resolver) ResolveEntries(entries []model.ContextEntry) ([]model.ContextEntry, error) {
	out := make([]model.ContextEntry, len(entries))
	for i, entry := range entries {
		switch e := entry.(type) {
		case model.LocalReference:
			loaded, err := r.Load(e)
			if err != nil {
				return nil, err
			}
			r.logger.Debug("inlined local context", "index", i, "path", string(e))
			out[i] = loaded
		case model.InlineContext, model.RemoteReference:
			r.logger.Debug("kept context entry", "index", i, "kind", model.ContextKind(e))
			out[i] = e
		default:
			return nil, &InvalidContextError{Index: i, Reason: fmt.Sprintf("unclassified entry %T", entry)}
		}
	}
	return out, nil
}

// Load reads and parses the local context file at ref
func (r *Resolver) Load(ref model.LocalReference) (model.InlineContext, error) {
	path := r.path(string(ref))

	f, err := os.Open(path)
	if err != nil {
		return nil, &ContextLoadError{Path: string(ref), Err: err}
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &ContextLoadError{Path: string(ref), Err: err}
	}

	var parsed interface{}
	if err := util.DecodeJSON(bytes.NewReader(data), &parsed); err != nil {
		return nil, &ContextParseError{Path: string(ref), Err: err}
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, &ContextParseError{Path: string(ref), Err: fmt.Errorf("expected a JSON object, got %T", parsed)}
	}

	if r.unwrap {
		if inner, ok := obj[model.ContextKey].(map[string]interface{}); ok {
			obj = inner
		}
	}

	return model.InlineContext(obj), nil
}

func (r *Resolver) path(ref string) string {
	if r.baseDir == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(r.baseDir, ref)
}
