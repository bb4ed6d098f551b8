package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/config"
	"github.com/blackwell-systems/caskkit/internal/releases"
	"github.com/blackwell-systems/caskkit/internal/store"
)

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	path := cfgFile
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	return config.Load(path, home)
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(cfg.DataDir, "caskkit.db"), nil
}

// openStore opens the history database, creating the schema on first use.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

// openReleases returns a release manager archiving under the data dir.
// The caller closes the returned store.
func openReleases() (*releases.Manager, *store.Store, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return releases.New(st, filepath.Join(cfg.DataDir, "releases")), st, nil
}

// recordEvent logs a lifecycle event. History is best effort: failures are
// logged and never fail the command.
func recordEvent(token, version string, action store.Action, detail string) {
	st, err := openStore()
	if err != nil {
		zap.L().Sugar().Warnw("history unavailable", "error", err)
		return
	}
	defer st.Close()

	e := &store.Event{Token: token, Version: version, Action: action, Detail: detail}
	if err := st.InsertEvent(e); err != nil {
		zap.L().Sugar().Warnw("failed to record event", "action", action, "token", token, "error", err)
	}
}

// loadDescriptor decodes a descriptor file of any supported format.
func loadDescriptor(path string) (*cask.Descriptor, error) {
	d, err := cask.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	zap.L().Sugar().Debugw("loaded descriptor", "path", path, "token", d.Token, "version", d.Version)
	return d, nil
}

// writeOutput writes data atomically to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// requestTimeout returns the configured network timeout.
func requestTimeout() time.Duration {
	if cfg.Download.TimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(cfg.Download.TimeoutSeconds) * time.Second
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
