package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var caveatsCmd = &cobra.Command{
	Use:     "caveats <file>",
	Short:   "Print the post-install caveats",
	Example: `  caskkit caveats Casks/clearvox.rb`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCaveats,
}

func init() {
	RootCmd.AddCommand(caveatsCmd)
}

func runCaveats(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor(args[0])
	if err != nil {
		return err
	}
	printCaveats(cmd, d.Caveats)
	return nil
}

func printCaveats(cmd *cobra.Command, caveats string) {
	if caveats == "" {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "==> Caveats")
	fmt.Fprintln(out, caveats)
}
