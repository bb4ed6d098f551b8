package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/brew"
	"github.com/blackwell-systems/caskkit/internal/store"
)

var uninstallFlagZap bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <token>",
	Short: "Uninstall a cask with brew",
	Long: `Run 'brew uninstall --cask'. With --zap Homebrew also removes the paths
listed in the cask's zap stanza; use 'caskkit zap' to preview them.`,
	Example: `  caskkit uninstall clearvox
  caskkit uninstall clearvox --zap`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallFlagZap, "zap", false, "Also remove zap paths")

	RootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	token := args[0]
	version := brew.InstalledVersion(cmd.Context(), token)

	if err := brew.UninstallCask(cmd.Context(), token, uninstallFlagZap); err != nil {
		return err
	}

	action := store.ActionUninstall
	if uninstallFlagZap {
		action = store.ActionZap
	}
	recordEvent(token, version, action, "brew uninstall")

	fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s\n", token)
	return nil
}
