package releases

import (
	"fmt"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

// Load restores the descriptor recorded for token at version.
func (m *Manager) Load(token, version string) (*cask.Descriptor, error) {
	r, err := m.store.GetRelease(token, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return m.loadArchive(r.ArchivePath)
}

// Latest restores the most recently recorded descriptor of token.
func (m *Manager) Latest(token string) (*cask.Descriptor, error) {
	r, err := m.store.LatestRelease(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest release: %w", err)
	}
	return m.loadArchive(r.ArchivePath)
}

func (m *Manager) loadArchive(path string) (*cask.Descriptor, error) {
	d, err := cask.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load release archive: %w", err)
	}
	return d, nil
}
