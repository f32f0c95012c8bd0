package model

import "time"

// Config is the complete claimsign configuration.
// Field tags serve both yaml.v3 (config show/init) and viper (mapstructure).
type Config struct {
	Signing  SigningConfig  `yaml:"signing" mapstructure:"signing"`
	Contexts ContextsConfig `yaml:"contexts" mapstructure:"contexts"`
	Remote   RemoteConfig   `yaml:"remote" mapstructure:"remote"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Template TemplateConfig `yaml:"template" mapstructure:"template"`
}

// SigningConfig selects the identity and proof parameters
type SigningConfig struct {
	DID          string `yaml:"did" mapstructure:"did"`                     // Key name in the keystore
	Cryptosuite  string `yaml:"cryptosuite" mapstructure:"cryptosuite"`     // eddsa-rdfc-2022 or eddsa-jcs-2022
	ProofPurpose string `yaml:"proof_purpose" mapstructure:"proof_purpose"` // assertionMethod, authentication
	KeysDir      string `yaml:"keys_dir" mapstructure:"keys_dir"`           // Empty means ~/.claimsign/keys
}

// ContextsConfig controls @context resolution before signing
type ContextsConfig struct {
	Resolve        bool     `yaml:"resolve" mapstructure:"resolve"`                 // Inline local context files
	Trusted        []string `yaml:"trusted" mapstructure:"trusted"`                 // Substrings marking a trusted reference
	TrustedDomains []string `yaml:"trusted_domains" mapstructure:"trusted_domains"` // Registrable domains marking a trusted reference
	BaseDir        string   `yaml:"base_dir" mapstructure:"base_dir"`               // Base for relative paths (empty: working dir)
	Unwrap         bool     `yaml:"unwrap" mapstructure:"unwrap"`                   // Replace {"@context": X} files by X
}

// RemoteConfig controls network loading of contexts by the signer
type RemoteConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	// HostRates override the request rate for individual context hosts
	HostRates []HostRateConfig `yaml:"host_rates" mapstructure:"host_rates"`
}

// HostRateConfig is the request budget for one host
type HostRateConfig struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls caching of remotely loaded contexts
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"` // Empty means ~/.claimsign/cache
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls rendering of signed claims
type OutputConfig struct {
	Compact bool `yaml:"compact" mapstructure:"compact"`
	Verbose bool `yaml:"-" mapstructure:"verbose"`
}

// BatchConfig holds the directories used by the batch command
type BatchConfig struct {
	InputDir  string `yaml:"input_dir" mapstructure:"input_dir"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// TemplateConfig holds defaults for generated claim skeletons
type TemplateConfig struct {
	LinkedClaimContext string `yaml:"linked_claim_context" mapstructure:"linked_claim_context"`
	Issuer             string `yaml:"issuer,omitempty" mapstructure:"issuer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Signing: SigningConfig{
			DID:          "local_did",
			Cryptosuite:  CryptosuiteEdDSARDFC,
			ProofPurpose: "assertionMethod",
		},
		Contexts: ContextsConfig{
			Resolve: true,
			Trusted: []string{"w3.org"},
		},
		Remote: RemoteConfig{
			Enabled:           false,
			Timeout:           30 * time.Second,
			UserAgent:         "claimsign/0.3 (+https://github.com/linkedtrust/claimsign)",
			MaxBodyBytes:      1_000_000,
			RequestsPerSecond: 2,
			BurstSize:         4,
			HostRates: []HostRateConfig{
				{Host: "w3id.org", RequestsPerSecond: 1, Burst: 2},
			},
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Batch: BatchConfig{
			InputDir:  "./claims",
			OutputDir: "./signed",
		},
		Template: TemplateConfig{
			LinkedClaimContext: "./contexts/linked-claim.jsonld",
		},
	}
}
