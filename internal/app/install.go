package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/brew"
	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/output"
	"github.com/blackwell-systems/caskkit/internal/store"
)

var (
	installFlagForce        bool
	installFlagNoQuarantine bool
)

var installCmd = &cobra.Command{
	Use:   "install <file>",
	Short: "Validate a descriptor and install it with brew",
	Long: `Validate the descriptor, then hand it to 'brew install --cask'.

YAML and JSON descriptors are rendered to a temporary Ruby cask first. When
a tap is configured it is added before installing. The caveats are printed
after a successful install.`,
	Example: `  caskkit install Casks/clearvox.rb
  caskkit install clearvox.yaml --no-quarantine`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installFlagForce, "force", false, "Pass --force to brew")
	installCmd.Flags().BoolVar(&installFlagNoQuarantine, "no-quarantine", false, "Pass --no-quarantine to brew")

	RootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	path := args[0]
	d, err := loadDescriptor(path)
	if err != nil {
		return err
	}
	if err := cask.Validate(d).Err(); err != nil {
		return err
	}

	ref, cleanup, err := rubyCaskPath(path, d)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Tap != "" {
		if err := brew.AddTap(cmd.Context(), cfg.Tap); err != nil {
			return err
		}
	}

	if v := brew.InstalledVersion(cmd.Context(), d.Token); v != "" && !installFlagForce {
		return fmt.Errorf("%s %s is already installed (use --force to reinstall)", d.Token, v)
	}

	spinner := output.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Installing %s %s", d.Token, d.Version))
	spinner.Start()
	err = brew.InstallCask(cmd.Context(), ref, brew.InstallOptions{
		Force:        installFlagForce,
		NoQuarantine: installFlagNoQuarantine,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	action, _ := d.InstallAction()
	recordEvent(d.Token, d.Version, store.ActionInstall, action.String())

	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s %s\n", d.DisplayName(), d.Version)
	printCaveats(cmd, d.Caveats)
	return nil
}

// rubyCaskPath returns a .rb path brew can install. Non-Ruby descriptors are
// rendered into a temporary directory named after the token.
func rubyCaskPath(path string, d *cask.Descriptor) (string, func(), error) {
	if f, _ := cask.FormatFromPath(path); f == cask.FormatRuby {
		return path, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "caskkit-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	rb := filepath.Join(dir, d.Token+".rb")
	if err := os.WriteFile(rb, cask.Render(d), 0644); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("failed to write %s: %w", rb, err)
	}
	return rb, func() { os.RemoveAll(dir) }, nil
}
