package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkedtrust/claimsign/internal/model"
	"github.com/linkedtrust/claimsign/internal/util"
)

var verifyRemote bool

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <signed-file>",
	Short: "Check the proof on a signed claim",
	Long: `Verify recomputes the Data Integrity proof of a signed claim and checks
the Ed25519 signature against the did:key named in the proof.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("remote-contexts") {
			cfg.Remote.Enabled = verifyRemote
		}
		logger := newLogger(cfg)

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("read signed claim: %w", err)
		}
		var signed model.SignedClaim
		err = util.DecodeJSON(f, &signed)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("parse signed claim: %w", err)
		}

		loader, err := newDocumentLoader(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		if err := newManager(cfg, loader, logger).Verify(signed); err != nil {
			return fmt.Errorf("verify %s: %w", args[0], err)
		}

		proof, _ := signed.Proof()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ valid proof by %v\n", proof["verificationMethod"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVar(&verifyRemote, "remote-contexts", false, "allow fetching contexts that are not built in")
}
