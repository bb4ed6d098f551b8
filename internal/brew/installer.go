package brew

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ErrNotInstalled is returned by CaskInfo when Homebrew does not know the cask.
var ErrNotInstalled = errors.New("cask not known to homebrew")

// installArgs builds `brew install --cask` arguments. ref is a token, a
// tap-qualified token or a path to a cask file.
func installArgs(ref string, opts InstallOptions) []string {
	args := []string{"install", "--cask"}
	if opts.Force {
		args = append(args, "--force")
	}
	if opts.NoQuarantine {
		args = append(args, "--no-quarantine")
	}
	return append(args, ref)
}

func uninstallArgs(token string, zapPaths bool) []string {
	args := []string{"uninstall", "--cask"}
	if zapPaths {
		args = append(args, "--zap")
	}
	return append(args, token)
}

func auditArgs(ref string, opts AuditOptions) []string {
	args := []string{"audit", "--cask"}
	if opts.Strict {
		args = append(args, "--strict")
	}
	if opts.Online {
		args = append(args, "--online")
	}
	if opts.New {
		args = append(args, "--new")
	}
	return append(args, ref)
}

func infoArgs(token string) []string {
	return []string{"info", "--json=v2", "--cask", token}
}

// run executes brew and returns its combined output.
func run(ctx context.Context, args ...string) ([]byte, error) {
	zap.L().Sugar().Debugw("running brew", "args", args)
	cmd := exec.CommandContext(ctx, Bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("brew %s failed: %w (output: %s)", args[0], err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// output executes brew and returns stdout only.
func output(ctx context.Context, args ...string) ([]byte, error) {
	zap.L().Sugar().Debugw("running brew", "args", args)
	cmd := exec.CommandContext(ctx, Bin, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("brew %s failed: %w (stderr: %s)", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("brew %s failed: %w", args[0], err)
	}
	return out, nil
}

// InstallCask installs a cask via brew install --cask.
func InstallCask(ctx context.Context, ref string, opts InstallOptions) error {
	_, err := run(ctx, installArgs(ref, opts)...)
	return err
}

// UninstallCask removes a cask. With zapPaths set Homebrew also removes the
// cask's zap paths.
func UninstallCask(ctx context.Context, token string, zapPaths bool) error {
	_, err := run(ctx, uninstallArgs(token, zapPaths)...)
	return err
}

// Audit runs brew audit against a cask and returns its report. A failing
// audit returns the report together with the error.
func Audit(ctx context.Context, ref string, opts AuditOptions) (string, error) {
	out, err := run(ctx, auditArgs(ref, opts)...)
	return strings.TrimSpace(string(out)), err
}

// GetCaskInfo returns Homebrew's view of a cask.
func GetCaskInfo(ctx context.Context, token string) (*CaskInfo, error) {
	out, err := output(ctx, infoArgs(token)...)
	if err != nil {
		return nil, err
	}
	return parseInfo(out, token)
}

func parseInfo(data []byte, token string) (*CaskInfo, error) {
	var info brewInfoOutput
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse brew info output: %w", err)
	}
	for _, c := range info.Casks {
		if c.Token == token || c.FullToken == token {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", token, ErrNotInstalled)
}

// AddTap adds a Homebrew tap if not already present
func AddTap(ctx context.Context, tap string) error {
	exists, err := TapExists(ctx, tap)
	if err != nil {
		return fmt.Errorf("failed to check if tap exists: %w", err)
	}

	if exists {
		return nil // Already tapped, nothing to do
	}

	_, err = run(ctx, "tap", tap)
	return err
}

// TapExists checks if a tap is already added
func TapExists(ctx context.Context, tap string) (bool, error) {
	out, err := output(ctx, "tap")
	if err != nil {
		return false, err
	}

	for _, t := range parseLines(string(out)) {
		if t == tap {
			return true, nil
		}
	}
	return false, nil
}

// InstalledVersion returns the installed version of token, or "" when the
// cask is not installed. A missing brew binary degrades to "" silently so
// callers on hosts without Homebrew can still run.
func InstalledVersion(ctx context.Context, token string) string {
	out, err := output(ctx, "list", "--cask", "--versions", token)
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 || fields[0] != token {
		return ""
	}
	return fields[len(fields)-1]
}

// Version returns the current Homebrew version.
func Version(ctx context.Context) (string, error) {
	out, err := output(ctx, "--version")
	if err != nil {
		return "", err
	}

	// Parse "Homebrew X.Y.Z" from first line
	lines := parseLines(string(out))
	if len(lines) == 0 {
		return "", fmt.Errorf("empty brew --version output")
	}
	parts := strings.Fields(lines[0])
	if len(parts) < 2 {
		return "", fmt.Errorf("unexpected brew --version format: %s", lines[0])
	}
	return parts[1], nil
}

// parseLines splits output into trimmed, non-empty lines.
func parseLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
