package app

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

var (
	renderFlagOutput string
	renderFlagCheck  bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a descriptor as a canonical Ruby cask",
	Long: `Render a descriptor in Homebrew's stanza order.

With --check the input must be a .rb file; the command fails when the file
differs from its canonical rendering.`,
	Example: `  caskkit render clearvox.yaml > Casks/clearvox.rb
  caskkit render Casks/clearvox.rb --check`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFlagOutput, "output", "o", "", "Write to file instead of stdout")
	renderCmd.Flags().BoolVar(&renderFlagCheck, "check", false, "Fail if the file is not canonically formatted")

	RootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]
	d, err := loadDescriptor(path)
	if err != nil {
		return err
	}
	rendered := cask.Render(d)

	if renderFlagCheck {
		if f, _ := cask.FormatFromPath(path); f != cask.FormatRuby {
			return fmt.Errorf("--check requires a .rb file")
		}
		current, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !bytes.Equal(current, rendered) {
			return fmt.Errorf("%s is not canonically formatted (run 'caskkit render %s -o %s')", path, path, path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is canonical\n", path)
		return nil
	}

	return writeOutput(cmd.OutOrStdout(), renderFlagOutput, rendered)
}
