package releases

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/blackwell-systems/caskkit/internal/cask"
	"github.com/blackwell-systems/caskkit/internal/store"
)

// Record archives the rendered descriptor and inserts its release row.
// Recording the same token and version twice returns store.ErrReleaseExists.
func (m *Manager) Record(d *cask.Descriptor) (*store.Release, error) {
	if d.Token == "" || d.Version == "" {
		return nil, fmt.Errorf("failed to record release: token and version are required")
	}
	for _, part := range []string{d.Token, d.Version} {
		if !safePathSegment(part) {
			return nil, fmt.Errorf("failed to record release: %q cannot name an archive file", part)
		}
	}

	url, err := d.ResolveURL()
	if err != nil {
		return nil, fmt.Errorf("failed to record release %s %s: %w", d.Token, d.Version, err)
	}

	if _, err := m.store.GetRelease(d.Token, d.Version); err == nil {
		return nil, fmt.Errorf("%s %s: %w", d.Token, d.Version, store.ErrReleaseExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check release history: %w", err)
	}

	dir := filepath.Join(m.archiveDir, d.Token)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := m.archivePath(d.Token, d.Version)
	if err := renameio.WriteFile(path, cask.Render(d), 0644); err != nil {
		return nil, fmt.Errorf("failed to archive %s %s: %w", d.Token, d.Version, err)
	}

	r := &store.Release{
		Token:       d.Token,
		Version:     d.Version,
		URL:         url,
		SHA256:      d.SHA256.String(),
		ArchivePath: path,
	}
	if _, err := m.store.InsertRelease(r); err != nil {
		// Try to clean up the archive if the DB insert fails
		os.Remove(path)
		return nil, fmt.Errorf("failed to insert release into database: %w", err)
	}

	zap.L().Sugar().Debugw("recorded release", "token", r.Token, "version", r.Version, "archive", path)
	return r, nil
}

// History returns the recorded releases of token, newest first.
func (m *Manager) History(token string) ([]*store.Release, error) {
	releases, err := m.store.ListReleases(token)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	return releases, nil
}

func (m *Manager) archivePath(token, version string) string {
	return filepath.Join(m.archiveDir, token, version+".rb")
}

// safePathSegment reports whether s stays a single file name under the
// archive directory.
func safePathSegment(s string) bool {
	return s != "." && !strings.ContainsAny(s, `/\`) && !strings.Contains(s, "..")
}
