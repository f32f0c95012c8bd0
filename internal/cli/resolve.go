package cli

import (
	"github.com/spf13/cobra"

	"github.com/linkedtrust/claimsign/internal/pipeline"
)

// newResolveCmd builds the resolve command
func newResolveCmd() *cobra.Command {
	var opts signFlags

	cmd := &cobra.Command{
		Use:   "resolve <claim-file>",
		Short: "Print a claim with its local contexts inlined",
		Long: `Resolve runs only the context resolution step and prints the document
that would be handed to the signer. Nothing is signed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			logger := newLogger(cfg)

			p := pipeline.NewPipeline(newResolver(cfg, logger), nil, pipeline.Options{ResolveContexts: true}, logger)
			doc, err := p.Resolve(args[0])
			if err != nil {
				return err
			}
			return pipeline.NewRenderer(cfg.Output.Compact).Render(cmd.OutOrStdout(), doc)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.compact, "compact", false, "write single-line JSON")
	flags.StringSliceVar(&opts.trusted, "trust", nil, "substring marking a trusted remote context (repeatable)")
	flags.StringSliceVar(&opts.trustedDomains, "trust-domain", nil, "registrable domain of trusted remote contexts (repeatable)")
	flags.BoolVar(&opts.unwrap, "unwrap", false, `replace context files shaped {"@context": X} by X`)
	flags.StringVar(&opts.baseDir, "base-dir", "", "directory relative context paths are resolved against")
	return cmd
}

func init() {
	rootCmd.AddCommand(newResolveCmd())
}
