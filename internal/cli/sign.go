package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkedtrust/claimsign/internal/ldsign"
	"github.com/linkedtrust/claimsign/internal/model"
	"github.com/linkedtrust/claimsign/internal/pipeline"
)

// newSignCmd builds the sign command
func newSignCmd() *cobra.Command {
	var (
		opts   signFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "sign <claim-file>",
		Short: "Resolve local contexts and sign a claim",
		Long: `Sign loads a claim, replaces local @context references by the JSON
they point to, and signs the result with a DID key from the keystore.

The signed claim is written to stdout, or to --out.

Example:
  claimsign sign claim.json
  claimsign sign claim.json --did issuer --out signed.json
  claimsign sign claim.json --no-resolve --cryptosuite eddsa-jcs-2022`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, &opts, output, args[0])
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "out", "o", "", "write the signed claim to this file instead of stdout")
	return cmd
}

func init() {
	rootCmd.AddCommand(newSignCmd())
}

func runSign(cmd *cobra.Command, opts *signFlags, output, path string) error {
	cfg, err := signConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	p, err := newPipeline(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	signed, err := p.Sign(cmd.Context(), path)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(cfg.Output.Compact)
	if output != "" {
		if err := renderer.RenderFile(output, signed); err != nil {
			return err
		}
		logger.Info("signed claim written", "path", output)
		return nil
	}
	return renderer.Render(cmd.OutOrStdout(), signed)
}

// signConfig loads the config, applies flags and validates signing settings
func signConfig(cmd *cobra.Command, flags *signFlags) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	flags.apply(cmd, cfg)

	if !ldsign.Supported(cfg.Signing.Cryptosuite) {
		return nil, fmt.Errorf("%w: %q", ldsign.ErrUnsupportedCryptosuite, cfg.Signing.Cryptosuite)
	}
	if cfg.Signing.DID == "" {
		return nil, fmt.Errorf("no signing key name: set --did or signing.did")
	}
	return cfg, nil
}
