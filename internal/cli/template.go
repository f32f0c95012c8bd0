package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkedtrust/claimsign/internal/claimtpl"
	"github.com/linkedtrust/claimsign/internal/keymgr"
	"github.com/linkedtrust/claimsign/internal/pipeline"
)

type templateFlags struct {
	issuer        string
	subject       string
	claim         string
	object        string
	statement     string
	context       string
	sourceURI     string
	howKnown      string
	aspect        string
	effectiveDate string
	stars         float64
	confidence    float64
	output        string
}

// newTemplateCmd builds the template command
func newTemplateCmd() *cobra.Command {
	var f templateFlags

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a skeleton linked claim",
		Long: `Template writes an unsigned linked claim ready for 'claimsign sign'.

Free text is folded to ASCII. Subject, object and source may be given as
bare domains; they are written as https URIs. Stars (0-5) are rounded to the
nearest half and also recorded as a -1..1 score. When --issuer is not given,
the issuer is the DID of the configured signing key, if it exists.

Example:
  claimsign template --subject example.org/org/1 --claim rated \
    --statement "Reliable partner" --stars 4.5 --how-known "worked with them directly" \
    --out claims/rating.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.issuer, "issuer", "", "issuer DID (default: DID of the signing key)")
	flags.StringVar(&f.subject, "subject", "", "URI the claim is about")
	flags.StringVar(&f.claim, "claim", "", "claim type, e.g. rated, impact, validated")
	flags.StringVar(&f.object, "object", "", "URI of the claim object")
	flags.StringVar(&f.statement, "statement", "", "free-text statement")
	flags.StringVar(&f.context, "context", "", "linked-claim context reference (default from config)")
	flags.StringVar(&f.sourceURI, "source", "", "URI of the source the claim is based on")
	flags.StringVar(&f.howKnown, "how-known", "", "how the issuer knows, e.g. FIRST_HAND or \"read it online\"")
	flags.StringVar(&f.aspect, "aspect", "", "rated aspect, e.g. quality:durability")
	flags.StringVar(&f.effectiveDate, "effective-date", "", "when the claimed event happened (YYYY-MM-DD or RFC 3339)")
	flags.Float64Var(&f.stars, "stars", 0, "star rating from 0 to 5")
	flags.Float64Var(&f.confidence, "confidence", 0, "confidence from 0 to 1")
	flags.StringVarP(&f.output, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func init() {
	rootCmd.AddCommand(newTemplateCmd())
}

func runTemplate(cmd *cobra.Command, f *templateFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	params := claimtpl.Params{
		LinkedClaimContext: cfg.Template.LinkedClaimContext,
		Issuer:             cfg.Template.Issuer,
		Subject:            f.subject,
		Claim:              f.claim,
		Object:             f.object,
		Statement:          f.statement,
		SourceURI:          f.sourceURI,
		HowKnown:           f.howKnown,
		Aspect:             f.aspect,
	}

	flags := cmd.Flags()
	if flags.Changed("context") {
		params.LinkedClaimContext = f.context
	}
	if flags.Changed("issuer") {
		params.Issuer = f.issuer
	}
	if flags.Changed("stars") {
		params.Stars = &f.stars
	}
	if flags.Changed("confidence") {
		params.Confidence = &f.confidence
	}
	if f.effectiveDate != "" {
		params.EffectiveDate, err = parseDate(f.effectiveDate)
		if err != nil {
			return err
		}
	}

	if params.Issuer == "" {
		if record, err := newKeyStore(cfg).Get(cfg.Signing.DID); err == nil {
			params.Issuer = record.DID
		} else if !isNotFound(err) {
			return err
		}
	}

	doc, err := claimtpl.New(params)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(cfg.Output.Compact)
	if f.output != "" {
		return renderer.RenderFile(f.output, doc)
	}
	return renderer.Render(cmd.OutOrStdout(), doc)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
}

func isNotFound(err error) bool {
	return errors.Is(err, keymgr.ErrKeyNotFound)
}
