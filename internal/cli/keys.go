package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linkedtrust/claimsign/internal/keymgr"
	"github.com/linkedtrust/claimsign/internal/model"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage signing identities",
	Long: `Manage the Ed25519 did:key identities used for signing.

Keys live in the keystore directory (signing.keys_dir, default
~/.claimsign/keys), one JSON file per name, readable only by the owner.`,
}

var keysCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Generate a new did:key identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keyStore()
		if err != nil {
			return err
		}
		record, err := store.Create(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created key %s\n", record.Name)
		fmt.Printf("  DID:      %s\n", record.DID)
		fmt.Printf("  Keystore: %s\n", store.Dir())
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored identities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keyStore()
		if err != nil {
			return err
		}
		records, err := store.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintf(os.Stderr, "No keys in %s (create one with 'claimsign keys create <name>')\n", store.Dir())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDID\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.DID, r.CreatedAt)
		}
		return w.Flush()
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the public details of an identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keyStore()
		if err != nil {
			return err
		}
		record, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Name:                %s\n", record.Name)
		fmt.Printf("DID:                 %s\n", record.DID)
		fmt.Printf("Verification method: %s\n", record.KeyID)
		fmt.Printf("Public key:          %s\n", record.PublicKeyMultibase)
		fmt.Printf("Created:             %s\n", record.CreatedAt)
		return nil
	},
}

func keyStore() (*keymgr.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newKeyStore(cfg), nil
}

func newKeyStore(cfg *model.Config) *keymgr.Store {
	return keymgr.NewStore(cfg.Signing.KeysDir, keymgr.WithStoreLogger(newLogger(cfg)))
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysCreateCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysShowCmd)
}
