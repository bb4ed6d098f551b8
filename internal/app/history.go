package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/output"
)

var (
	historyFlagEvents  bool
	historyFlagLimit   int
	historyFlagRestore string
	historyFlagLatest  bool
	historyFlagRecord  string
	historyFlagFormat  string
	historyFlagOutput  string
)

var historyCmd = &cobra.Command{
	Use:   "history [token]",
	Short: "Show recorded releases and lifecycle events",
	Long: `Show the release history kept in the local database.

Releases are recorded by 'caskkit bump --record' or 'caskkit history
--record <file>'. Each recorded release archives the rendered cask, so a
superseded descriptor can be restored with --restore, and the newest one
with --latest.

--events lists install, uninstall, zap, fetch and bump operations instead.`,
	Example: `  caskkit history
  caskkit history clearvox --events --limit 20
  caskkit history --record Casks/clearvox.rb
  caskkit history clearvox --restore 1.0.0 --format yaml
  caskkit history clearvox --latest -o Casks/clearvox.rb`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyFlagEvents, "events", false, "List lifecycle events instead of releases")
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 50, "Maximum number of events to show (0 for all)")
	historyCmd.Flags().StringVar(&historyFlagRestore, "restore", "", "Print the archived descriptor for this version")
	historyCmd.Flags().BoolVar(&historyFlagLatest, "latest", false, "Print the most recently recorded descriptor")
	historyCmd.Flags().StringVar(&historyFlagRecord, "record", "", "Record the descriptor in this file as a release")
	historyCmd.Flags().StringVar(&historyFlagFormat, "format", "rb", "Format for --restore and --latest: rb, yaml, json")
	historyCmd.Flags().StringVarP(&historyFlagOutput, "output", "o", "", "Write the restored descriptor to file instead of stdout")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	token := ""
	if len(args) == 1 {
		token = args[0]
	}

	mgr, st, err := openReleases()
	if err != nil {
		return err
	}
	defer st.Close()
	out := cmd.OutOrStdout()

	switch {
	case historyFlagRecord != "":
		d, err := loadDescriptor(historyFlagRecord)
		if err != nil {
			return err
		}
		if err := cask.Validate(d).Err(); err != nil {
			return err
		}
		r, err := mgr.Record(d)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Recorded %s %s (%s)\n", r.Token, r.Version, r.ArchivePath)
		return nil

	case historyFlagRestore != "" || historyFlagLatest:
		if token == "" {
			return fmt.Errorf("--restore and --latest require a token")
		}
		if historyFlagRestore != "" && historyFlagLatest {
			return fmt.Errorf("--restore and --latest are mutually exclusive")
		}
		format, err := cask.ParseFormat(historyFlagFormat)
		if err != nil {
			return err
		}
		var d *cask.Descriptor
		if historyFlagLatest {
			d, err = mgr.Latest(token)
		} else {
			d, err = mgr.Load(token, historyFlagRestore)
		}
		if err != nil {
			return err
		}
		data, err := cask.Encode(d, format)
		if err != nil {
			return err
		}
		return writeOutput(out, historyFlagOutput, data)

	case historyFlagEvents:
		events, err := st.ListEvents(token, historyFlagLimit)
		if err != nil {
			return err
		}
		fmt.Fprint(out, output.RenderEvents(events))
		return nil

	default:
		releases, err := mgr.History(token)
		if err != nil {
			return err
		}
		fmt.Fprint(out, output.RenderReleases(releases))
		return nil
	}
}
