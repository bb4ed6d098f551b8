package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/fetch"
	"github.com/blackwell-systems/caskkit/internal/store"
)

var (
	bumpFlagSHA256 string
	bumpFlagFetch  bool
	bumpFlagWrite  bool
	bumpFlagRecord bool
	bumpFlagOutput string
)

var bumpCmd = &cobra.Command{
	Use:   "bump <file> [version]",
	Short: "Supersede a descriptor with a new version",
	Long: `Produce the descriptor for a new upstream version.

The source descriptor is never modified in memory; a new descriptor is
derived from it with the new version and checksum. The url stanza must still
render to a valid URL for the new version.

When the version is omitted, livecheck supplies the latest upstream version.

Checksum:
  --fetch         download the new payload and record its SHA-256
  --sha256 HEX    use a known digest
  (neither)       keep sha256 :no_check, which validate reports as a warning

--write replaces the input file; otherwise the result goes to stdout or -o.
--record archives the new release in the history database.`,
	Example: `  caskkit bump Casks/clearvox.rb 1.1.0 --fetch --write
  caskkit bump Casks/clearvox.rb --fetch --record
  caskkit bump clearvox.yaml 1.1.0 --sha256 <hex> -o clearvox-1.1.0.yaml`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBump,
}

func init() {
	bumpCmd.Flags().StringVar(&bumpFlagSHA256, "sha256", "", "SHA-256 digest of the new payload")
	bumpCmd.Flags().BoolVar(&bumpFlagFetch, "fetch", false, "Download the new payload and compute its SHA-256")
	bumpCmd.Flags().BoolVar(&bumpFlagWrite, "write", false, "Overwrite the input file")
	bumpCmd.Flags().BoolVar(&bumpFlagRecord, "record", false, "Record the new release in history")
	bumpCmd.Flags().StringVarP(&bumpFlagOutput, "output", "o", "", "Write to file instead of stdout")

	RootCmd.AddCommand(bumpCmd)
}

func runBump(cmd *cobra.Command, args []string) error {
	logger := zap.L().Sugar()
	path := args[0]

	if bumpFlagFetch && bumpFlagSHA256 != "" {
		return fmt.Errorf("--fetch and --sha256 are mutually exclusive")
	}
	if bumpFlagWrite && bumpFlagOutput != "" {
		return fmt.Errorf("--write and --output are mutually exclusive")
	}

	format, err := cask.FormatFromPath(path)
	if err != nil {
		return err
	}
	d, err := loadDescriptor(path)
	if err != nil {
		return err
	}

	version := ""
	if len(args) == 2 {
		version = args[1]
	} else {
		res, err := checkLatest(cmd, d)
		if err != nil {
			return err
		}
		if !res.Outdated {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s is up to date (%s)\n", d.Token, d.Version)
			return nil
		}
		version = res.Latest
	}

	sha := cask.Checksum{NoCheck: true}
	if bumpFlagSHA256 != "" {
		sha = cask.Checksum{Hex: strings.ToLower(bumpFlagSHA256)}
	}

	next, err := cask.Bump(d, version, sha)
	if err != nil {
		return err
	}

	if bumpFlagFetch {
		res, err := fetch.DownloadDescriptor(cmd.Context(), next, cfg.Download.Dir, fetch.Options{
			Client:   &http.Client{Timeout: requestTimeout()},
			Progress: cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("failed to fetch %s %s: %w", next.Token, next.Version, err)
		}
		next.SHA256 = cask.Checksum{Hex: res.SHA256}
		logger.Infow("computed checksum", "token", next.Token, "version", next.Version, "sha256", res.SHA256)
	}

	issues := cask.Validate(next)
	for _, w := range issues.Warnings() {
		logger.Warn(w.String())
	}
	if err := issues.Err(); err != nil {
		return err
	}

	data, err := cask.Encode(next, format)
	if err != nil {
		return err
	}
	target := bumpFlagOutput
	if bumpFlagWrite {
		target = path
	}
	if err := writeOutput(cmd.OutOrStdout(), target, data); err != nil {
		return err
	}

	detail := fmt.Sprintf("%s -> %s", d.Version, next.Version)
	if bumpFlagRecord {
		mgr, st, err := openReleases()
		if err != nil {
			return err
		}
		defer st.Close()
		r, err := mgr.Record(next)
		if err != nil {
			return err
		}
		detail += " archived " + r.ArchivePath
	}
	recordEvent(next.Token, next.Version, store.ActionBump, detail)

	if target != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Bumped %s %s\n", next.Token, detail)
	}
	return nil
}
