// Package jsonld loads JSON-LD context documents for the signer and
// canonicalizes claims into signable bytes.
//
// W3C contexts the signer depends on are preloaded from embedded files.
// Anything else is only fetched when a remote fetch function is configured;
// fetched documents go through a per-host rate limiter and a cache.
package jsonld

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/piprate/json-gold/ld"

	"github.com/linkedtrust/claimsign/internal/cache"
	"github.com/linkedtrust/claimsign/internal/worker"
)

// Well-known context URLs served from embedded copies
const (
	CredentialsV1URL   = "https://www.w3.org/2018/credentials/v1"
	DataIntegrityV2URL = "https://w3id.org/security/data-integrity/v2"
)

//go:embed contexts/*.jsonld
var embedded embed.FS

var preloaded = map[string]string{
	CredentialsV1URL:   "contexts/credentials-v1.jsonld",
	DataIntegrityV2URL: "contexts/data-integrity-v2.jsonld",
}

// FetchFunc retrieves the raw bytes of a remote document
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Loader is a json-gold document loader with embedded W3C contexts
type Loader struct {
	*ld.CachingDocumentLoader
	remote *remoteLoader
}

// LoaderOption configures a Loader
type LoaderOption func(*remoteLoader)

// WithFetch enables remote loading through fetch
func WithFetch(fetch FetchFunc) LoaderOption {
	return func(r *remoteLoader) { r.fetch = fetch }
}

// WithCache stores fetched documents in c for ttl (zero: cache default)
func WithCache(c cache.Cache, ttl time.Duration) LoaderOption {
	return func(r *remoteLoader) {
		if c != nil {
			r.cache = c
			r.ttl = ttl
		}
	}
}

// WithLimiter throttles remote loads per host
func WithLimiter(l *worker.Limiter) LoaderOption {
	return func(r *remoteLoader) { r.limiter = l }
}

// WithContext bounds remote loads; json-gold itself carries no context
func WithContext(ctx context.Context) LoaderOption {
	return func(r *remoteLoader) {
		if ctx != nil {
			r.ctx = ctx
		}
	}
}

// WithLogger sets the logger for load decisions
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(r *remoteLoader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewLoader creates a loader with the embedded contexts preloaded
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	remote := &remoteLoader{
		cache:  cache.Nop{},
		ctx:    context.Background(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(remote)
	}

	l := &Loader{
		CachingDocumentLoader: ld.NewCachingDocumentLoader(remote),
		remote:                remote,
	}

	for url, name := range preloaded {
		f, err := embedded.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open embedded context %s: %w", name, err)
		}
		doc, err := ld.DocumentFromReader(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse embedded context %s: %w", name, err)
		}
		l.AddDocument(url, doc)
	}

	return l, nil
}

// Preloaded lists the URLs served without network access
func Preloaded() []string {
	urls := make([]string, 0, len(preloaded))
	for url := range preloaded {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// RemoteEnabled reports whether unknown contexts may be fetched
func (l *Loader) RemoteEnabled() bool {
	return l.remote.fetch != nil
}

type remoteLoader struct {
	fetch   FetchFunc
	cache   cache.Cache
	ttl     time.Duration
	limiter *worker.Limiter
	ctx     context.Context
	logger  *slog.Logger
}

func (r *remoteLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if r.fetch == nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed,
			fmt.Sprintf("context %s is not preloaded and remote loading is disabled", u))
	}

	key := cache.ContextKey(u)
	if data, ok := r.cache.Get(key); ok {
		doc, err := ld.DocumentFromReader(bytes.NewReader(data))
		if err == nil {
			r.logger.Debug("context cache hit", "url", u)
			return &ld.RemoteDocument{DocumentURL: u, Document: doc}, nil
		}
		_ = r.cache.Delete(key)
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(r.ctx, u); err != nil {
			return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("rate limit wait for %s: %v", u, err))
		}
	}

	r.logger.Debug("fetching remote context", "url", u)
	data, err := r.fetch(r.ctx, u)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("fetch %s: %v", u, err))
	}

	doc, err := ld.DocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("parse %s: %v", u, err))
	}

	if err := r.cache.Set(key, data, r.ttl); err != nil {
		r.logger.Warn("failed to cache context", "url", u, "error", err)
	}

	return &ld.RemoteDocument{DocumentURL: u, Document: doc}, nil
}
