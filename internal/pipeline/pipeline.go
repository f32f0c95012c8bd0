// Package pipeline runs one claim through loading, context resolution,
// signing and rendering.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/linkedtrust/claimsign/internal/ldcontext"
	"github.com/linkedtrust/claimsign/internal/model"
)

// Signer signs a claim document with a named DID identity
type Signer interface {
	SignWithDID(ctx context.Context, doc model.ClaimDocument, name string) (model.SignedClaim, error)
}

// Options control a pipeline run
type Options struct {
	// ResolveContexts inlines local @context references before signing
	ResolveContexts bool
	// DID names the signing identity
	DID string
}

// Pipeline orchestrates load -> resolve -> sign
type Pipeline struct {
	resolver *ldcontext.Resolver
	signer   Signer
	opts     Options
	logger   *slog.Logger
}

// NewPipeline creates a pipeline. resolver may be nil when ResolveContexts is off.
func NewPipeline(resolver *ldcontext.Resolver, signer Signer, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if resolver == nil {
		resolver = ldcontext.NewResolver(nil, ldcontext.WithLogger(logger))
	}
	return &Pipeline{
		resolver: resolver,
		signer:   signer,
		opts:     opts,
		logger:   logger,
	}
}

// Resolve loads the claim at path and resolves its @context
func (p *Pipeline) Resolve(path string) (model.ClaimDocument, error) {
	doc, err := LoadClaim(path)
	if err != nil {
		return nil, err
	}
	if err := p.resolver.Resolve(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Sign loads, optionally resolves, and signs the claim at path.
// The document handed to the signer is the resolved one.
func (p *Pipeline) Sign(ctx context.Context, path string) (model.SignedClaim, error) {
	if p.signer == nil {
		return nil, fmt.Errorf("no signer configured")
	}

	var doc model.ClaimDocument
	var err error
	if p.opts.ResolveContexts {
		doc, err = p.Resolve(path)
	} else {
		doc, err = LoadClaim(path)
	}
	if err != nil {
		return nil, err
	}

	p.logger.Debug("claim ready for signing", "path", path, "resolved", p.opts.ResolveContexts, "did", p.opts.DID)

	signed, err := p.signer.SignWithDID(ctx, doc, p.opts.DID)
	if err != nil {
		return nil, err
	}

	p.logger.Info("claim signed", "path", path, "did", p.opts.DID)
	return signed, nil
}
