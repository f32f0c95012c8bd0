package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linkedtrust/claimsign/internal/model"
	"github.com/linkedtrust/claimsign/internal/pipeline"
)

// newBatchCmd builds the batch command
func newBatchCmd() *cobra.Command {
	var (
		opts      signFlags
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "batch [input-dir]",
		Short: "Sign every claim in a directory",
		Long: `Batch signs each *.json claim in the input directory, one at a time,
and writes the signed claim under the same file name to the output dir.

Failures are reported per file; the command exits non-zero if any claim
could not be signed.

Example:
  claimsign batch
  claimsign batch ./claims --output-dir ./signed --did issuer`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := signConfig(cmd, &opts)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Batch.InputDir = args[0]
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Batch.OutputDir = outputDir
			}
			return runBatch(cmd, cfg)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for signed claims (default from config: ./signed)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newBatchCmd())
}

func runBatch(cmd *cobra.Command, cfg *model.Config) error {
	logger := newLogger(cfg)
	stderr := cmd.ErrOrStderr()

	files, err := claimFiles(cfg.Batch.InputDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  claimsign batch\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input dir:    %s (%d claims)\n", cfg.Batch.InputDir, len(files))
	fmt.Fprintf(stderr, "  Output dir:   %s\n", cfg.Batch.OutputDir)
	fmt.Fprintf(stderr, "  Key:          %s\n", cfg.Signing.DID)
	fmt.Fprintf(stderr, "\n")

	if err := os.MkdirAll(cfg.Batch.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := newPipeline(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	renderer := pipeline.NewRenderer(cfg.Output.Compact)

	failures := 0
	for _, file := range files {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		signed, err := p.Sign(cmd.Context(), file)
		if err != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: %v\n", file, err)
			continue
		}

		out := filepath.Join(cfg.Batch.OutputDir, filepath.Base(file))
		if err := renderer.RenderFile(out, signed); err != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(stderr, "✓ %s -> %s\n", file, out)
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d claims\n", len(files))
	fmt.Fprintf(stderr, "  Signed:    %d\n", len(files)-failures)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(stderr, "\n")

	if failures > 0 {
		return fmt.Errorf("%d of %d claims failed", failures, len(files))
	}
	return nil
}

// claimFiles lists the *.json files of dir in name order
func claimFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
