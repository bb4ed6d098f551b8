package app

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/livecheck"
	"github.com/blackwell-systems/caskkit/internal/output"
)

var livecheckFlagJSON bool

var livecheckCmd = &cobra.Command{
	Use:   "livecheck <file>...",
	Short: "Check upstream for newer releases",
	Long: `Run each descriptor's livecheck strategy and compare the latest upstream
version with the descriptor's version.

Strategies:
  github_latest    GitHub releases/latest API (default when no livecheck block)
  github_releases  newest non-draft, non-prerelease GitHub release
  page_match       regex over the checked page

GitHub requests use the token from the environment variable named by
github.token_env in the config (GITHUB_TOKEN by default).`,
	Example: `  caskkit livecheck Casks/clearvox.rb
  caskkit livecheck Casks/*.rb --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLivecheck,
}

func init() {
	livecheckCmd.Flags().BoolVar(&livecheckFlagJSON, "json", false, "Print results as JSON")

	RootCmd.AddCommand(livecheckCmd)
}

func newChecker() *livecheck.Checker {
	return livecheck.New(
		livecheck.WithHTTPClient(&http.Client{Timeout: requestTimeout()}),
		livecheck.WithAPIBase(cfg.GitHub.API),
		livecheck.WithToken(cfg.GitHubToken()),
	)
}

// checkLatest runs livecheck for a single descriptor behind a spinner.
func checkLatest(cmd *cobra.Command, d *cask.Descriptor) (*livecheck.Result, error) {
	spinner := output.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Checking %s upstream", d.Token))
	spinner.Start()
	res, err := newChecker().Latest(cmd.Context(), d)
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("livecheck %s failed: %w", d.Token, err)
	}
	return res, nil
}

func runLivecheck(cmd *cobra.Command, args []string) error {
	var results []*livecheck.Result
	var failed int

	for _, path := range args {
		d, err := loadDescriptor(path)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			failed++
			continue
		}
		res, err := checkLatest(cmd, d)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			failed++
			continue
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if livecheckFlagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else {
		fmt.Fprint(out, output.RenderLivecheck(results))
	}

	if failed > 0 {
		return fmt.Errorf("livecheck failed for %d of %d descriptors", failed, len(args))
	}
	return nil
}
