package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/cleanup"
	"github.com/blackwell-systems/caskkit/internal/output"
	"github.com/blackwell-systems/caskkit/internal/store"
)

var (
	zapFlagDryRun bool
	zapFlagYes    bool
	zapFlagDelete bool
)

var zapCmd = &cobra.Command{
	Use:   "zap <file>",
	Short: "Remove the files a cask's zap stanza lists",
	Long: `Resolve the zap stanza against the home directory and clean it up.

trash paths are moved into the configured trash directory (or deleted with
--delete); rmdir paths are removed only when empty. Missing paths are
skipped. The plan is shown before anything is touched.`,
	Example: `  caskkit zap Casks/clearvox.rb --dry-run
  caskkit zap Casks/clearvox.rb --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runZap,
}

func init() {
	zapCmd.Flags().BoolVar(&zapFlagDryRun, "dry-run", false, "Show what would be removed without removing")
	zapCmd.Flags().BoolVar(&zapFlagYes, "yes", false, "Skip confirmation prompt")
	zapCmd.Flags().BoolVar(&zapFlagDelete, "delete", false, "Delete trash paths instead of moving them to the trash")

	RootCmd.AddCommand(zapCmd)
}

func runZap(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor(args[0])
	if err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	plan, err := cleanup.Plan(cmd.Context(), d, home)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderZapPlan(plan))

	existing := cleanup.Existing(plan)
	if len(existing) == 0 {
		return nil
	}
	if !zapFlagDryRun && !zapFlagYes {
		if !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Remove %d paths for %s?", len(existing), d.Token)) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	opts := cleanup.Options{DryRun: zapFlagDryRun}
	if !zapFlagDelete {
		opts.TrashDir = cfg.TrashDir
	}
	bar := output.NewProgress(cmd.ErrOrStderr(), len(existing), "Removing zap paths")
	opts.OnTarget = func(t cleanup.Target) {
		if t.Exists {
			bar.Increment()
		}
	}

	report, err := cleanup.Execute(cmd.Context(), existing, opts)
	bar.Finish()
	if err != nil {
		return err
	}
	fmt.Fprint(out, output.RenderCleanupReport(report, zapFlagDryRun))

	if !zapFlagDryRun {
		recordEvent(d.Token, d.Version, store.ActionZap,
			fmt.Sprintf("trashed %d, removed %d", len(report.Trashed), len(report.Removed)))
	}
	return nil
}
