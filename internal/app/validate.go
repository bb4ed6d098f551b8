package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/brew"
	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/output"
)

var (
	validateFlagStrict    bool
	validateFlagBrewAudit bool
	validateFlagOnline    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Audit cask descriptors",
	Long: `Parse each descriptor and report audit findings.

Errors fail the command. Warnings (for example a versioned release that
opts out of checksum verification with sha256 :no_check) are reported but
only fail with --strict.

With --brew-audit the host's 'brew audit --cask' is run as well.`,
	Example: `  caskkit validate Casks/clearvox.rb
  caskkit validate --strict Casks/*.rb
  caskkit validate clearvox.yaml --brew-audit --online`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFlagStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().BoolVar(&validateFlagBrewAudit, "brew-audit", false, "Also run brew audit --cask")
	validateCmd.Flags().BoolVar(&validateFlagOnline, "online", false, "Pass --online to brew audit")

	RootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0

	for _, path := range args {
		if len(args) > 1 {
			fmt.Fprintf(out, "==> %s\n", path)
		}

		d, err := loadDescriptor(path)
		if err != nil {
			fmt.Fprintf(out, "%s\n", err)
			failed++
			continue
		}

		issues := cask.Validate(d)
		fmt.Fprint(out, output.RenderIssues(issues))
		if issues.Err() != nil || (validateFlagStrict && len(issues.Warnings()) > 0) {
			failed++
		}

		if validateFlagBrewAudit {
			if err := brewAudit(cmd, path, d); err != nil {
				fmt.Fprintf(out, "brew audit: %v\n", err)
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d descriptors failed validation", failed, len(args))
	}
	return nil
}

// brewAudit runs brew audit on the file at path, rendering non-Ruby
// descriptors to a temporary cask first.
func brewAudit(cmd *cobra.Command, path string, d *cask.Descriptor) error {
	ref, cleanup, err := rubyCaskPath(path, d)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := brew.Audit(cmd.Context(), ref, brew.AuditOptions{
		Strict: validateFlagStrict,
		Online: validateFlagOnline,
	})
	if report != "" {
		fmt.Fprintln(cmd.OutOrStdout(), report)
	}
	return err
}
