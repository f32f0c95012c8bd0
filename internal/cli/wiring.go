package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/linkedtrust/claimsign/internal/cache"
	"github.com/linkedtrust/claimsign/internal/jsonld"
	"github.com/linkedtrust/claimsign/internal/keymgr"
	"github.com/linkedtrust/claimsign/internal/ldcontext"
	"github.com/linkedtrust/claimsign/internal/ldsign"
	"github.com/linkedtrust/claimsign/internal/model"
	"github.com/linkedtrust/claimsign/internal/pipeline"
	"github.com/linkedtrust/claimsign/internal/worker"
)

// signFlags are shared by sign and batch
type signFlags struct {
	did            string
	noResolve      bool
	cryptosuite    string
	purpose        string
	compact        bool
	remoteContexts bool
	noCache        bool
	trusted        []string
	trustedDomains []string
	unwrap         bool
	baseDir        string
}

func (f *signFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.did, "did", "", "name of the signing key in the keystore (default from config: local_did)")
	flags.BoolVar(&f.noResolve, "no-resolve", false, "sign without inlining local @context files")
	flags.StringVar(&f.cryptosuite, "cryptosuite", "", "proof cryptosuite (eddsa-rdfc-2022, eddsa-jcs-2022)")
	flags.StringVar(&f.purpose, "purpose", "", "proof purpose (default assertionMethod)")
	flags.BoolVar(&f.compact, "compact", false, "write single-line JSON")
	flags.BoolVar(&f.remoteContexts, "remote-contexts", false, "allow fetching contexts that are not built in")
	flags.BoolVar(&f.noCache, "no-cache", false, "do not cache fetched contexts")
	flags.StringSliceVar(&f.trusted, "trust", nil, "substring marking a trusted remote context (repeatable)")
	flags.StringSliceVar(&f.trustedDomains, "trust-domain", nil, "registrable domain of trusted remote contexts (repeatable)")
	flags.BoolVar(&f.unwrap, "unwrap", false, `replace context files shaped {"@context": X} by X`)
	flags.StringVar(&f.baseDir, "base-dir", "", "directory relative context paths are resolved against")
}

// apply overrides cfg with the flags set on cmd
func (f *signFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("did") {
		cfg.Signing.DID = f.did
	}
	if flags.Changed("no-resolve") {
		cfg.Contexts.Resolve = !f.noResolve
	}
	if flags.Changed("cryptosuite") {
		cfg.Signing.Cryptosuite = f.cryptosuite
	}
	if flags.Changed("purpose") {
		cfg.Signing.ProofPurpose = f.purpose
	}
	if flags.Changed("compact") {
		cfg.Output.Compact = f.compact
	}
	if flags.Changed("remote-contexts") {
		cfg.Remote.Enabled = f.remoteContexts
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !f.noCache
	}
	if flags.Changed("trust") {
		cfg.Contexts.Trusted = f.trusted
	}
	if flags.Changed("trust-domain") {
		cfg.Contexts.TrustedDomains = f.trustedDomains
	}
	if flags.Changed("unwrap") {
		cfg.Contexts.Unwrap = f.unwrap
	}
	if flags.Changed("base-dir") {
		cfg.Contexts.BaseDir = f.baseDir
	}
}

func newResolver(cfg *model.Config, logger *slog.Logger) *ldcontext.Resolver {
	policy := ldcontext.NewPolicy(cfg.Contexts.Trusted, cfg.Contexts.TrustedDomains)
	return ldcontext.NewResolver(policy,
		ldcontext.WithBaseDir(cfg.Contexts.BaseDir),
		ldcontext.WithUnwrap(cfg.Contexts.Unwrap),
		ldcontext.WithLogger(logger),
	)
}

// newDocumentLoader builds the JSON-LD loader; network access only when
// remote loading is enabled
func newDocumentLoader(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*jsonld.Loader, error) {
	opts := []jsonld.LoaderOption{jsonld.WithLogger(logger), jsonld.WithContext(ctx)}

	if cfg.Remote.Enabled {
		fetcher := pipeline.NewFetcher(cfg.Remote.Timeout, cfg.Remote.UserAgent, cfg.Remote.MaxBodyBytes,
			cfg.Remote.HTTPProxy, cfg.Remote.HTTPSProxy)
		opts = append(opts,
			jsonld.WithFetch(fetcher.Body),
			jsonld.WithLimiter(newLimiter(cfg.Remote)),
		)
		if cfg.Cache.Enabled {
			opts = append(opts, jsonld.WithCache(
				cache.NewLayeredCache(cfg.Cache.MemoryTTL, cacheDir(cfg), cfg.Cache.DiskTTL), 0))
		}
	}

	loader, err := jsonld.NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("document loader ready",
		"builtin_contexts", len(jsonld.Preloaded()),
		"remote", loader.RemoteEnabled(),
	)
	return loader, nil
}

// newLimiter applies the default request rate and the per-host overrides
func newLimiter(remote model.RemoteConfig) *worker.Limiter {
	limiter := worker.NewLimiter(remote.RequestsPerSecond, remote.BurstSize)
	for _, hr := range remote.HostRates {
		if hr.Host == "" {
			continue
		}
		limiter.SetHostRate(hr.Host, hr.RequestsPerSecond, hr.Burst)
	}
	return limiter
}

func newManager(cfg *model.Config, loader *jsonld.Loader, logger *slog.Logger) *keymgr.Manager {
	return keymgr.NewManager(
		newKeyStore(cfg),
		ldsign.NewSigner(loader),
		cfg.Signing.Cryptosuite,
		cfg.Signing.ProofPurpose,
		logger,
	)
}

func newPipeline(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	loader, err := newDocumentLoader(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(
		newResolver(cfg, logger),
		newManager(cfg, loader, logger),
		pipeline.Options{ResolveContexts: cfg.Contexts.Resolve, DID: cfg.Signing.DID},
		logger,
	), nil
}

func cacheDir(cfg *model.Config) string {
	if cfg.Cache.DiskDir != "" {
		return cfg.Cache.DiskDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claimsign", "cache")
	}
	return filepath.Join(home, ".claimsign", "cache")
}
