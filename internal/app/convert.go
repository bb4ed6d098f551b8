package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

var (
	convertFlagTo     string
	convertFlagOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a descriptor between Ruby, YAML and JSON",
	Long: `Convert a descriptor to another format. The input format is taken from
the file extension (.rb, .yaml, .yml, .json). YAML and JSON inputs are
checked against the descriptor schema before decoding.`,
	Example: `  caskkit convert Casks/clearvox.rb --to yaml
  caskkit convert clearvox.yaml --to json -o clearvox.json`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertFlagTo, "to", "yaml", "Output format: rb, yaml, json")
	convertCmd.Flags().StringVarP(&convertFlagOutput, "output", "o", "", "Write to file instead of stdout")

	RootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	format, err := cask.ParseFormat(convertFlagTo)
	if err != nil {
		return err
	}
	d, err := loadDescriptor(args[0])
	if err != nil {
		return err
	}
	data, err := cask.Encode(d, format)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), convertFlagOutput, data)
}
