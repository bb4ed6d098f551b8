package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

var urlFlagVersion string

var urlCmd = &cobra.Command{
	Use:   "url <file>",
	Short: "Print the rendered download URL",
	Long: `Expand the version placeholders in the descriptor's url stanza.

By default the descriptor's own version is used; --version previews the
URL a bump would produce.`,
	Example: `  caskkit url Casks/clearvox.rb
  caskkit url Casks/clearvox.rb --version 1.2.0`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

func init() {
	urlCmd.Flags().StringVar(&urlFlagVersion, "version", "", "Render for this version instead")

	RootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor(args[0])
	if err != nil {
		return err
	}

	version := d.Version
	if urlFlagVersion != "" {
		version = urlFlagVersion
	}
	url, err := cask.ResolveURLFor(d.URL, version)
	if err != nil {
		return fmt.Errorf("failed to resolve url for %s %s: %w", d.Token, version, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
