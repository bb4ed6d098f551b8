package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/output"
	"github.com/blackwell-systems/caskkit/internal/watcher"
)

var watchFlagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-validate a descriptor whenever it changes",
	Long: `Watch a descriptor file and re-run validation after every save.

The command runs in the foreground until interrupted with Ctrl-C.`,
	Example: `  caskkit watch Casks/clearvox.rb
  caskkit watch clearvox.yaml --debounce 500ms`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchFlagDebounce, "debounce", watcher.DefaultDebounce, "Quiet period before re-validating")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	w, err := watcher.New(args[0], func(r watcher.Result) {
		printWatchResult(out, r)
	}, watcher.WithDebounce(watchFlagDebounce))
	if err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", args[0])
	if err := w.Run(ctx); err != nil {
		return err
	}
	if ctx.Err() == context.Canceled {
		fmt.Fprintln(out, "\nStopped.")
	}
	return nil
}

func printWatchResult(out io.Writer, r watcher.Result) {
	fmt.Fprintf(out, "\n[%s] ", r.At.Format("15:04:05"))
	if r.Err != nil {
		fmt.Fprintf(out, "%v\n", r.Err)
		return
	}
	fmt.Fprintf(out, "%s %s\n", r.Descriptor.Token, r.Descriptor.Version)
	fmt.Fprint(out, output.RenderIssues(r.Issues))
}
