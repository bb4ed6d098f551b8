package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/fetch"
	"github.com/blackwell-systems/caskkit/internal/store"
)

var (
	fetchFlagDir      string
	fetchFlagNoVerify bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <file>",
	Short: "Download a descriptor's payload and verify its checksum",
	Long: `Download the payload named by the rendered url stanza and check it
against the sha256 stanza. A descriptor declaring sha256 :no_check is
downloaded without verification and the skip is reported.`,
	Example: `  caskkit fetch Casks/clearvox.rb
  caskkit fetch Casks/clearvox.rb --dir /tmp/payloads`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFlagDir, "dir", "", "Download directory (default: download.dir from config)")
	fetchCmd.Flags().BoolVar(&fetchFlagNoVerify, "no-verify", false, "Skip checksum verification")

	RootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor(args[0])
	if err != nil {
		return err
	}

	dir := fetchFlagDir
	if dir == "" {
		dir = cfg.Download.Dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	res, err := fetch.DownloadDescriptor(cmd.Context(), d, dir, fetch.Options{
		Client:   &http.Client{Timeout: requestTimeout()},
		Progress: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Downloaded %s\n", res.Path)
	fmt.Fprintf(out, "SHA256:    %s\n", res.SHA256)

	status := "unverified"
	if !fetchFlagNoVerify {
		verified, err := fetch.Verify(d.SHA256, res.Path)
		if err != nil {
			os.Remove(res.Path)
			return err
		}
		if verified {
			status = "verified"
		} else {
			status = "skipped (sha256 :no_check)"
		}
	}
	fmt.Fprintf(out, "Checksum:  %s\n", status)

	recordEvent(d.Token, d.Version, store.ActionFetch, fmt.Sprintf("%s %s", res.Path, status))
	return nil
}
