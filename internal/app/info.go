package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blackwell-systems/caskkit/internal/brew"
	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/output"
)

var (
	infoFlagJSON bool
	infoFlagBrew bool
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show a descriptor's fields",
	Long: `Show the descriptor's fields, including the rendered download URL.

With --brew the host's Homebrew is asked whether the cask is installed.`,
	Example: `  caskkit info Casks/clearvox.rb
  caskkit info clearvox.yaml --json
  caskkit info Casks/clearvox.rb --brew`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoFlagJSON, "json", false, "Print the descriptor as JSON")
	infoCmd.Flags().BoolVar(&infoFlagBrew, "brew", false, "Include Homebrew install status")

	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if infoFlagJSON {
		data, err := cask.EncodeJSON(d)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	url, err := d.ResolveURL()
	if err != nil {
		url = ""
	}
	fmt.Fprint(out, output.RenderDescriptor(d, url))

	if infoFlagBrew {
		info, err := brew.GetCaskInfo(cmd.Context(), d.Token)
		switch {
		case errors.Is(err, brew.ErrNotInstalled):
			fmt.Fprintf(out, "%-12s %s\n", "Homebrew:", "not known")
		case err != nil:
			return err
		case info.IsInstalled():
			fmt.Fprintf(out, "%-12s installed %s (%s)\n", "Homebrew:", info.Installed, info.Tap)
		default:
			fmt.Fprintf(out, "%-12s available %s (%s)\n", "Homebrew:", info.Version, info.Tap)
		}
		if v, err := brew.Version(cmd.Context()); err == nil {
			fmt.Fprintf(out, "%-12s %s\n", "brew:", v)
		} else {
			zap.L().Sugar().Debugw("brew version unavailable", "error", err)
		}
	}
	return nil
}
